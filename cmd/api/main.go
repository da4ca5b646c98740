package main

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickmart/quickmart/internal/config"
	"github.com/quickmart/quickmart/internal/delivery"
	"github.com/quickmart/quickmart/internal/notify"
	"github.com/quickmart/quickmart/internal/order"
	"github.com/quickmart/quickmart/internal/product"
	"github.com/quickmart/quickmart/internal/shop"
	"github.com/quickmart/quickmart/internal/user"

	_ "github.com/quickmart/quickmart/docs"
)

// @title QuickMart Marketplace API
// @version 1.0
// @description Grocery marketplace connecting customers, shop owners and delivery agents.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres config: %v", err)
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		log.Fatalf("postgres unreachable: %v", err)
	}

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.SESSender != "" {
		n, err := notify.NewEmailNotifier(context.Background(), cfg.AWSRegion, cfg.AWSKeyID, cfg.AWSSecret, cfg.SESSender)
		if err != nil {
			log.Printf("email notifier disabled: %v", err)
		} else {
			notifier = n
		}
	}

	r := newRouter(deps{
		users:     user.NewPGRepo(pool),
		shops:     shop.NewPGRepo(pool),
		products:  product.NewPGRepo(pool),
		orders:    order.NewPGRepo(pool),
		agents:    delivery.NewPGRepo(pool),
		notifier:  notifier,
		jwtSecret: cfg.JWTSecret,
		tokenTTL:  cfg.TokenTTL,
	})

	log.Printf("quickmart api listening on %s", cfg.HTTPAddr)
	log.Fatal(r.Run(cfg.HTTPAddr))
}
