package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// File 把每个键写成目录下的一个文件，写入采用临时文件加 rename，
// 保证读者看到的总是完整内容。
type File struct {
	mu         sync.Mutex
	dir        string
	compressor Compressor
}

// NewFile 创建文件存储，compressor 为 nil 时按原样写入 JSON。
func NewFile(dir string, compressor Compressor) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &File{dir: dir, compressor: compressor}, nil
}

func (f *File) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	name := key + ".json"
	if f.compressor != nil {
		name += f.compressor.Extension()
	}
	return filepath.Join(f.dir, name), nil
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := f.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if f.compressor == nil {
		return data, nil
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	return decompressed, nil
}

func (f *File) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := f.path(key)
	if err != nil {
		return err
	}

	data := value
	if f.compressor != nil {
		if data, err = f.compressor.Compress(value); err != nil {
			return fmt.Errorf("compress %s: %w", path, err)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, path)
}

// Close 释放压缩器资源
func (f *File) Close() {
	if f.compressor != nil {
		f.compressor.Close()
	}
}
