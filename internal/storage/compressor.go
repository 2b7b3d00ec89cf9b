package storage

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compressor 对整个存储值做压缩，文件后端据此决定落盘格式与扩展名
type Compressor interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
	Extension() string
	Close()
}

// ZstdCompression 持有一对可复用的 zstd 编解码器，EncodeAll/DecodeAll 可并发调用
type ZstdCompression struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstdCompressor 创建默认压缩级别的 zstd 编解码器。
// 使用完毕需调用 Close 释放解码器的后台 goroutine。
func NewZstdCompressor() (*ZstdCompression, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &ZstdCompression{encoder: encoder, decoder: decoder}, nil
}

// Compress 压缩一条完整的存储值
func (z *ZstdCompression) Compress(val []byte) ([]byte, error) {
	return z.encoder.EncodeAll(val, nil), nil
}

// Decompress 还原 Compress 写出的内容，损坏的数据返回错误
func (z *ZstdCompression) Decompress(val []byte) ([]byte, error) {
	out, err := z.decoder.DecodeAll(val, nil)
	if err != nil {
		return nil, fmt.Errorf("decode zstd payload: %w", err)
	}
	return out, nil
}

// Extension 追加在 .json 之后
func (z *ZstdCompression) Extension() string {
	return ".zst"
}

func (z *ZstdCompression) Close() {
	_ = z.encoder.Close()
	z.decoder.Close()
}
