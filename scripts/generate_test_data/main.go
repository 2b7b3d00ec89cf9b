package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/rs/zerolog"
	"github.com/streamlog/internal/config"
	"github.com/streamlog/internal/db"
	"github.com/streamlog/internal/logging"
	"github.com/streamlog/internal/service"
	"github.com/streamlog/internal/storage"
)

var sampleNotes = []string{
	"",
	"Great raid!",
	"Tech issues at start.",
	"Played the new **roguelike** release.",
	"Collab with a friend, chat was wild.",
	"Short just-chatting session.",
	"Subathon day, see [vod](https://example.com/vod).",
}

// 测试数据生成器
func main() {
	days := flag.Int("days", 90, "number of days back from today to fill")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	conf, err := config.Load()
	if err != nil {
		log.Fatal("加载配置失败:", err)
	}
	logger, err := logging.New(conf)
	if err != nil {
		log.Fatal("初始化日志失败:", err)
	}

	backend, cleanup, err := storage.Open(conf, logger)
	if err != nil {
		log.Fatal("打开存储失败:", err)
	}
	defer cleanup()

	svc := service.NewStreamService(backend, zerolog.Nop())
	rng := rand.New(rand.NewPCG(*seed, *seed^0x5eed))

	fmt.Println("开始生成测试数据...")
	count, err := generateStreams(context.Background(), svc, *days, rng)
	if err != nil {
		log.Fatal("生成测试数据失败:", err)
	}
	fmt.Printf("测试数据生成完成！共写入 %d 条直播记录\n", count)
}

// generateStreams 为过去 days 天随机生成记录，大约三分之一的日子不开播，
// 少数日子会有两场直播。
func generateStreams(ctx context.Context, svc *service.StreamService, days int, rng *rand.Rand) (int, error) {
	if err := svc.EnsureInitialized(ctx); err != nil {
		return 0, err
	}

	today := svc.Today()
	created := 0
	for offset := days - 1; offset >= 0; offset-- {
		date := today.AddDays(-offset)
		sessions := 0
		switch r := rng.IntN(10); {
		case r < 3:
			sessions = 0
		case r < 9:
			sessions = 1
		default:
			sessions = 2
		}

		for i := 0; i < sessions; i++ {
			stream := db.Stream{
				Date:     date,
				Platform: db.Platforms[rng.IntN(len(db.Platforms))],
				Viewers:  float64(5 + rng.IntN(400)),
				Duration: float64(1+rng.IntN(24)) / 4,
				Note:     sampleNotes[rng.IntN(len(sampleNotes))],
			}
			if _, err := svc.Upsert(ctx, stream); err != nil {
				return created, fmt.Errorf("create stream for %s: %w", date, err)
			}
			created++
		}
	}

	return created, nil
}
