package main

import (
	"context"
	"log"

	"Gather_Events/internal/model"
	"Gather_Events/internal/pkg"
	"Gather_Events/internal/repository/mysql"
	"Gather_Events/internal/repository/redis"
	"Gather_Events/internal/router"
	"Gather_Events/internal/service"
)

func main() {
	cfg := pkg.LoadConfig()

	if err := mysql.InitDB(cfg.MySQLDSN); err != nil {
		panic(err)
	}

	// 连接redis
	if err := redis.Init(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		panic(err)
	}
	defer redis.Close()

	// 自动建表（开发阶段 OK）
	mysql.DB.AutoMigrate(
		&model.Profile{},
		&model.Event{},
		&model.Booking{},
		&model.BookingOutbox{},
		&model.Message{},
	)

	// outbox 搬运：配了 Kafka 就投递，没配先打日志
	sender := service.LogSender
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			log.Printf("kafka init err, fallback to log sender: %v", err)
		} else {
			defer producer.Close()
			sender = service.KafkaSender(producer)
		}
	}
	relayer := service.NewOutboxRelayer(&mysql.OutboxRepository{DB: mysql.DB}, sender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relayer.Run(ctx)

	// Gin
	r := router.InitRouter(cfg)
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatal(err)
	}
}
