package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTPConfig addresses the remote web host the schedule is mirrored to.
type SFTPConfig struct {
	Host      string
	Port      int
	User      string
	Pass      string
	RemoteDir string
}

func (c SFTPConfig) Enabled() bool {
	return c.Host != ""
}

// SFTPWriter uploads objects to <RemoteDir>/<bucket>/<key>. Each Put opens
// its own connection, so one writer can serve concurrent runs.
type SFTPWriter struct {
	cfg SFTPConfig
}

func NewSFTPWriter(cfg SFTPConfig) (*SFTPWriter, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Pass == "" {
		return nil, fmt.Errorf("sftp: missing SFTP_HOST / SFTP_USER / SFTP_PASS")
	}
	if cfg.Port <= 0 {
		cfg.Port = 22
	}
	if cfg.RemoteDir == "" {
		cfg.RemoteDir = "/"
	}
	return &SFTPWriter{cfg: cfg}, nil
}

// RemotePath returns where an object ends up on the server.
func (w *SFTPWriter) RemotePath(bucket, key string) string {
	return path.Join(w.cfg.RemoteDir, bucket, key)
}

func (w *SFTPWriter) Put(ctx context.Context, bucket, key string, body []byte, _ PutOptions) error {
	sshClient, err := w.dial(ctx)
	if err != nil {
		return err
	}
	defer sshClient.Close()

	cli, err := sftp.NewClient(sshClient)
	if err != nil {
		return fmt.Errorf("sftp: new client: %w", err)
	}
	defer cli.Close()

	remote := w.RemotePath(bucket, key)
	if err := cli.MkdirAll(path.Dir(remote)); err != nil {
		return fmt.Errorf("sftp: mkdir %s: %w", path.Dir(remote), err)
	}

	// upload next to the target, then swap it in
	tmp := remote + ".part"
	dst, err := cli.Create(tmp)
	if err != nil {
		return fmt.Errorf("sftp: create %s: %w", tmp, err)
	}
	if _, err := io.Copy(dst, bytes.NewReader(body)); err != nil {
		dst.Close()
		return fmt.Errorf("sftp: upload %s: %w", remote, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("sftp: close %s: %w", tmp, err)
	}
	if err := cli.PosixRename(tmp, remote); err != nil {
		return fmt.Errorf("sftp: rename %s: %w", remote, err)
	}
	return nil
}

func (w *SFTPWriter) dial(ctx context.Context) (*ssh.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sftp: dial canceled: %w", err)
	}
	sshCfg := &ssh.ClientConfig{
		User:            w.cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(w.cfg.Pass)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         20 * time.Second,
	}
	addr := fmt.Sprintf("%s:%d", w.cfg.Host, w.cfg.Port)

	type dialRes struct {
		client *ssh.Client
		err    error
	}
	ch := make(chan dialRes, 1)
	go func() {
		c, err := ssh.Dial("tcp", addr, sshCfg)
		ch <- dialRes{client: c, err: err}
	}()

	select {
	case <-ctx.Done():
		// close the connection if the dial still completes
		go func() {
			if r := <-ch; r.client != nil {
				r.client.Close()
			}
		}()
		return nil, fmt.Errorf("sftp: dial canceled: %w", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("sftp: dial %s: %w", addr, r.err)
		}
		return r.client, nil
	}
}
