package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/stockroom/internal/adapter/storage"
	"github.com/rl1809/stockroom/internal/config"
	"github.com/rl1809/stockroom/internal/core/domain"
	"github.com/rl1809/stockroom/internal/core/service"
)

const ownerID = "stress-owner"

func main() {
	initialStock := flag.Int("stock", 20, "initial item quantity")
	totalRequests := flag.Int("requests", 50, "concurrent sale requests, one unit each")
	useConfig := flag.Bool("use-config", false, "use STORAGE_DRIVER/REDIS_ADDR instead of in-memory stores")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	storageCfg := config.Storage{Driver: config.DriverMemory}
	redisAddr := ""
	lockTTL := 5 * time.Second
	if *useConfig {
		cfg, err := config.Load()
		if err != nil {
			logger.Fatal("failed to load config", zap.Error(err))
		}
		storageCfg, redisAddr, lockTTL = cfg.Storage, cfg.RedisAddr, cfg.LockTTL
	}

	db, closeDB, err := storage.Open(ctx, storageCfg)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer closeDB()

	cache, closeCache, err := storage.OpenCache(ctx, redisAddr)
	if err != nil {
		logger.Fatal("failed to open cache", zap.Error(err))
	}
	defer closeCache()

	quiet := zap.NewNop()
	itemService := service.NewItemService(db, quiet)
	saleService := service.NewSaleService(db, cache, quiet, service.SaleConfig{
		LockTTL:     lockTTL,
		MaxAttempts: 3,
	})

	item, err := itemService.CreateItem(ctx, ownerID, "stress-item", *initialStock, decimal.RequireFromString("9.99"))
	if err != nil {
		logger.Fatal("failed to create item", zap.Error(err))
	}

	// Counters
	var successCount, soldOutCount, failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			_, err := saleService.RecordSale(ctx, ownerID, item.ID, 1, fmt.Sprintf("req-%d", n))
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				soldOutCount.Add(1)
			default:
				failCount.Add(1)
				logger.Warn("sale failed", zap.Int("request", n), zap.Error(err))
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := int(successCount.Load())
	soldOut := int(soldOutCount.Load())
	fail := int(failCount.Load())

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Storage:          %s\n", storageCfg.Driver)
	fmt.Printf("Initial Stock:    %d\n", *initialStock)
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Sold Out:         %d\n", soldOut)
	fmt.Printf("Other Failures:   %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	expected := *initialStock
	if *totalRequests < expected {
		expected = *totalRequests
	}
	if success == expected && fail == 0 {
		fmt.Printf("PASS: exactly %d sales succeeded\n", expected)
	} else {
		fmt.Printf("FAIL: expected %d successes and no failures, got %d/%d\n", expected, success, fail)
	}

	final, err := db.GetItem(ctx, ownerID, item.ID)
	if err != nil {
		logger.Fatal("failed to read item", zap.Error(err))
	}
	fmt.Printf("Final Stock:      %d\n", final.Quantity)

	if final.Quantity == *initialStock-success {
		fmt.Println("PASS: stock matches recorded sales")
	} else {
		fmt.Printf("FAIL: expected stock %d, got %d\n", *initialStock-success, final.Quantity)
	}

	summary, err := db.SalesSummary(ctx, ownerID)
	if err != nil {
		logger.Fatal("failed to read summary", zap.Error(err))
	}
	for _, entry := range summary {
		if entry.ItemID == item.ID {
			fmt.Printf("Summary Quantity: %d, Amount: %s\n", entry.TotalQuantity, entry.TotalAmount.StringFixed(2))
		}
	}
}
