package transport

import (
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

const (
	connectTimeout = 30 * time.Second
	retryDelay     = 5 * time.Second
	maxRetries     = 1
)

// Config holds the SFTP endpoint the partner gave us. The user is
// chrooted on the server side, so RemoteDir is usually "/".
type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	RemoteDir string
}

// SFTPTransporter uploads files over SFTP and verifies each one by
// comparing the remote size against the local size.
type SFTPTransporter struct {
	logger *zap.Logger
	cfg    Config

	// sleep is swapped out in tests to avoid real retry delays.
	sleep func(time.Duration)
}

func NewSFTPTransporter(logger *zap.Logger, cfg Config) *SFTPTransporter {
	return &SFTPTransporter{logger: logger, cfg: cfg, sleep: time.Sleep}
}

func (t *SFTPTransporter) Deliver(files map[string]string) Result {
	if t.cfg.Host == "" || t.cfg.Username == "" {
		return Result{Error: "SFTP credentials not configured"}
	}

	client, sshConn, err := t.connectWithRetry()
	if err != nil {
		return Result{Error: err.Error()}
	}
	defer sshConn.Close()
	defer client.Close()

	// Map iteration order is random; a stable order keeps logs and
	// partial-failure reports reproducible.
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var uploaded []string
	for _, name := range names {
		if err := t.uploadAndVerify(client, name, files[name]); err != nil {
			t.logger.Error("Upload failed, aborting remaining files",
				zap.String("file", name),
				zap.Error(err),
			)
			return Result{Error: err.Error(), Uploaded: uploaded}
		}
		uploaded = append(uploaded, name)
		t.logger.Info("Uploaded and verified file", zap.String("file", name))
	}

	return Result{Success: true, Uploaded: uploaded}
}

// connectWithRetry dials the server, retrying once after a fixed delay
// for transient failures. Authentication failures are never retried:
// wrong credentials won't fix themselves.
func (t *SFTPTransporter) connectWithRetry() (*sftp.Client, *ssh.Client, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			t.logger.Warn("SFTP connection failed, retrying",
				zap.Error(lastErr),
				zap.Duration("delay", retryDelay),
			)
			t.sleep(retryDelay)
		}

		client, sshConn, err := t.connect()
		if err == nil {
			return client, sshConn, nil
		}
		lastErr = err

		if isAuthError(err) {
			return nil, nil, fmt.Errorf("SFTP authentication failed: %w", err)
		}
	}

	return nil, nil, fmt.Errorf("SFTP connection failed after %d attempts: %w", maxRetries+1, lastErr)
}

func (t *SFTPTransporter) connect() (*sftp.Client, *ssh.Client, error) {
	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)
	sshConn, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            t.cfg.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(t.cfg.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         connectTimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	client, err := sftp.NewClient(sshConn)
	if err != nil {
		sshConn.Close()
		return nil, nil, fmt.Errorf("open sftp session: %w", err)
	}

	return client, sshConn, nil
}

func (t *SFTPTransporter) uploadAndVerify(client *sftp.Client, name, localPath string) error {
	local, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("cannot read local file %s: %w", localPath, err)
	}
	defer local.Close()

	localInfo, err := local.Stat()
	if err != nil {
		return fmt.Errorf("stat local file %s: %w", localPath, err)
	}

	remotePath := path.Join(t.cfg.RemoteDir, name)
	remote, err := client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create remote file %s: %w", remotePath, err)
	}

	if _, err := io.Copy(remote, local); err != nil {
		remote.Close()
		return fmt.Errorf("upload %s: %w", name, err)
	}
	if err := remote.Close(); err != nil {
		return fmt.Errorf("close remote file %s: %w", remotePath, err)
	}

	remoteInfo, err := client.Stat(remotePath)
	if err != nil {
		return fmt.Errorf("cannot verify remote file size for %s: %w", name, err)
	}
	if remoteInfo.Size() != localInfo.Size() {
		return fmt.Errorf("size mismatch for %s: local=%d, remote=%d",
			name, localInfo.Size(), remoteInfo.Size())
	}

	return nil
}

// isAuthError distinguishes credential rejections from transient
// connection problems. The ssh package reports auth failures with a
// stable message prefix.
func isAuthError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "unable to authenticate")
}
