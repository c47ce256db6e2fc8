package main

import (
	"context"
	"log"
	"os"

	"github.com/mathstutor/mathstutor-go/api"
	"github.com/mathstutor/mathstutor-go/core"
	"github.com/mathstutor/mathstutor-go/core/admin"
	"github.com/mathstutor/mathstutor-go/core/lesson"
	"github.com/mathstutor/mathstutor-go/core/payment"
	amqpcast "github.com/mathstutor/mathstutor-go/services/broadcast/amqp"
	dummymail "github.com/mathstutor/mathstutor-go/services/email/dummy"
	sendgridmail "github.com/mathstutor/mathstutor-go/services/email/sendgrid"
	logsvc "github.com/mathstutor/mathstutor-go/services/logger"
	"github.com/mathstutor/mathstutor-go/session"
	"github.com/mathstutor/mathstutor-go/storage/kv/inmem"
	redisstore "github.com/mathstutor/mathstutor-go/storage/kv/redis"
)

// newLogger reports to Rollbar when a token is configured, otherwise logs to
// the console only.
func newLogger(conf *core.Config) core.Logger {
	if conf.RollbarToken != "" {
		return logsvc.NewRollbarLogger(log.New(os.Stderr, "", log.LstdFlags), conf)
	}
	return logsvc.NewConsoleLogger(conf)
}

// newMailer sends through SendGrid when a key is configured, otherwise
// captures messages in memory.
func newMailer(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.SendgridAPIKey != "" {
		return sendgridmail.NewService(conf, logger)
	}
	return dummymail.NewService(conf.AppName)
}

// storageProviders selects the key-value store and the session broadcaster
// from config: Redis when an address is configured, the in-memory pair
// otherwise. A configured AMQP broker takes over broadcasting either way.
// The returned cleanup closes whatever connections were opened.
func storageProviders(conf *core.Config, logger core.Logger) (core.KeyValue, core.Broadcaster, func(), error) {
	var (
		kv      core.KeyValue
		bc      core.Broadcaster
		closers []func()
	)
	if conf.RedisAddr != "" {
		client, err := redisstore.NewClient(conf)
		if err != nil {
			return nil, nil, nil, err
		}
		closers = append(closers, func() { _ = client.Close() })
		kv = redisstore.NewStore(client)
		bc = redisstore.NewBroadcaster(client, logger)
	} else {
		kv = inmem.NewStore()
		bc = inmem.NewBroadcaster()
	}
	if conf.AMQPUrl != "" {
		amqpBC, err := amqpcast.NewBroadcaster(conf, logger)
		if err != nil {
			for _, closer := range closers {
				closer()
			}
			return nil, nil, nil, err
		}
		closers = append(closers, func() { _ = amqpBC.Close() })
		bc = amqpBC
	}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return kv, bc, cleanup, nil
}

func main() {
	conf := core.NewConfig()
	logger := newLogger(conf)

	kv, bc, cleanup, err := storageProviders(conf, logger)
	if err != nil {
		logger.Fatal("initializing session storage", err)
	}
	defer cleanup()

	mailer := newMailer(conf, logger)

	apiClient := api.NewClient(conf, kv, logger)
	holder := session.NewHolder(apiClient, kv, bc, logger)
	lessonSvc := lesson.NewService(conf, apiClient, apiClient, apiClient, apiClient, kv, logger)
	paySvc := payment.NewService(apiClient, apiClient, kv, logger)
	adminSvc := admin.NewService(adminBackend{apiClient}, logger)

	ctx := context.Background()
	if err := holder.Init(ctx); err != nil {
		logger.Error("resolving stored session", err)
	}

	cli := commandLine{
		conf:     conf,
		holder:   holder,
		lessons:  lessonSvc,
		payments: paySvc,
		admin:    adminSvc,
		mailer:   mailer,
		log:      logger,
	}
	if err := cli.run(ctx, os.Args); err != nil {
		if err != errHelp {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}
}
