package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidFilename = errors.New("invalid stored filename")

// DiskStore lưu file upload vào một thư mục public cố định (vd: ./public/img)
type DiskStore struct {
	dir        string
	randReader io.Reader
}

// NewDiskStore tạo thư mục nếu chưa có
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir, randReader: rand.Reader}, nil
}

func (s *DiskStore) Dir() string {
	return s.dir
}

// GenerateFilename: 16 random bytes hex-encoded + extension của file gốc
func (s *DiskStore) GenerateFilename(originalName string) (string, error) {
	raw := make([]byte, 16)
	if _, err := io.ReadFull(s.randReader, raw); err != nil {
		return "", fmt.Errorf("generate filename: %w", err)
	}
	return hex.EncodeToString(raw) + filepath.Ext(originalName), nil
}

// Save ghi src vào thư mục upload dưới tên random và trả về tên đã lưu.
// The file is written to a temp file first and renamed, so it either exists fully or not at all.
func (s *DiskStore) Save(ctx context.Context, originalName string, src io.Reader) (string, error) {
	name, err := s.GenerateFilename(originalName)
	if err != nil {
		return "", err
	}

	if err := s.writeAtomic(ctx, name, src); err != nil {
		return "", err
	}
	return name, nil
}

// Put ghi data dưới tên cho trước (dùng cho thumbnail)
func (s *DiskStore) Put(ctx context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	return s.writeAtomic(ctx, name, bytes.NewReader(data))
}

// Read đọc toàn bộ nội dung file đã lưu
func (s *DiskStore) Read(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Remove xóa file đã lưu; file không tồn tại không phải lỗi
func (s *DiskStore) Remove(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// Exists kiểm tra file đã lưu còn trên disk không
func (s *DiskStore) Exists(name string) bool {
	if checkName(name) != nil {
		return false
	}
	_, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil
}

// Writable dùng cho health check: thư mục upload tồn tại và là directory
func (s *DiskStore) Writable() error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("upload dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("upload dir %s is not a directory", s.dir)
	}
	return nil
}

func (s *DiskStore) writeAtomic(ctx context.Context, name string, src io.Reader) error {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	// CreateTemp dùng 0600, file public cần đọc được
	if err := tmp.Chmod(0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if _, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: src}); err != nil {
		cleanup()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// checkName chặn path traversal: chỉ chấp nhận tên file trần
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	return nil
}

// ctxReader dừng copy khi request bị cancel
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
