package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gomodule/redcore/redcore"
	"github.com/gomodule/redcore/resp"
	"github.com/gomodule/redcore/transport"
)

func main() {
	log, _ := zap.NewDevelopment()

	addr, err := redcore.ParseURI("redis://127.0.0.1:6379/0")
	if err != nil {
		log.Fatal("parse uri", zap.Error(err))
	}

	tcp := transport.NewTCP(transport.DialOptions{
		Address: addr.Host,
		Timeout: 5 * time.Second,
	}, log)

	opts := redcore.DefaultOptions()
	opts.Database = addr.Database
	opts.Logger = log

	resources := redcore.NewClientResources()
	resources.Logger = log

	endpoint := redcore.NewEndpoint(tcp, opts, resources)
	endpoint.AddEventListener(logEvent(log))
	endpoint.SetMessageListener(func(msg redcore.Message) {
		fmt.Printf("message on %s: %s\n", msg.Channel, msg.Data)
	})

	if err := endpoint.Connect(); err != nil {
		log.Fatal("connect", zap.Error(err))
	}
	defer endpoint.Close()

	set := redcore.NewCommand("SET", &resp.StatusOutput{}, "greeting", "hello from redcore")
	if err := endpoint.Write(set); err != nil {
		log.Fatal("write SET", zap.Error(err))
	}
	if _, err := set.AwaitTimeout(2 * time.Second); err != nil {
		log.Error("SET failed", zap.Error(err))
	}

	bulk := &resp.BulkOutput{}
	get := redcore.NewCommand("GET", bulk, "greeting")
	if err := endpoint.Write(get); err != nil {
		log.Fatal("write GET", zap.Error(err))
	}
	if _, err := get.AwaitTimeout(2 * time.Second); err != nil {
		log.Error("GET failed", zap.Error(err))
	} else if value, ok := bulk.String(); ok {
		fmt.Println("greeting:", value)
	} else {
		fmt.Println("greeting: (nil)")
	}

	sub := redcore.NewCommand("SUBSCRIBE", &resp.GenericOutput{}, "announcements")
	if err := endpoint.Write(sub); err != nil {
		log.Fatal("write SUBSCRIBE", zap.Error(err))
	}
	if _, err := sub.AwaitTimeout(2 * time.Second); err != nil {
		log.Error("SUBSCRIBE failed", zap.Error(err))
	}

	time.Sleep(5 * time.Second)
	fmt.Printf("stats: %+v\n", endpoint.Stats())
}

func logEvent(log *zap.Logger) redcore.EventListener {
	return func(ev redcore.Event) {
		switch ev.Kind {
		case redcore.LifecycleChanged:
			log.Info("lifecycle changed", zap.String("from", ev.From.String()), zap.String("to", ev.To.String()))
		case redcore.ReconnectScheduled:
			log.Info("reconnect scheduled", zap.Int("attempt", ev.Attempt), zap.Duration("delay", ev.Delay))
		case redcore.ReconnectFailed:
			log.Warn("reconnect failed", zap.Int("attempt", ev.Attempt), zap.Error(ev.Err))
		case redcore.SubscriptionRestored:
			log.Info("subscriptions restored", zap.Int("channels", ev.Channels), zap.Int("patterns", ev.Patterns))
		}
	}
}
