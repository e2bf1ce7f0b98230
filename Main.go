package main

import (
	"context"
	"log"

	"LittleLemon/config"
	"LittleLemon/jwt"
	"LittleLemon/routers"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	gin.SetMode(cfg.Server.Mode)

	db, err := config.OpenDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("cannot connect to database: %v", err)
	}
	defer func() {
		dbInstance, _ := db.DB()
		_ = dbInstance.Close()
	}()

	ctx := context.Background()
	if err := config.SeedGroups(ctx, db); err != nil {
		log.Fatalf("cannot seed groups: %v", err)
	}
	if err := config.SeedAdmin(ctx, db, cfg.Seed); err != nil {
		log.Fatalf("cannot seed admin: %v", err)
	}

	rdb := config.SetupRedisConnection(cfg.Redis)
	if rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("redis unreachable: %v", err)
		}
		defer rdb.Close()
	}

	keys, err := jwt.LoadKeys(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath)
	if err != nil {
		log.Fatalf("cannot load jwt keys: %v", err)
	}

	svc := routers.NewServices(db, rdb, keys, cfg.JWT.TokenTTL, cfg.Redis.TTL)
	router, err := routers.SetupRouters(svc, cfg.Server.TrustedProxies)
	if err != nil {
		log.Fatalf("cannot set up router: %v", err)
	}
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
