package main

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"inhouse/internal/bot"
	"inhouse/internal/config"
)

func serve(conf *config.Config) error {
	b, err := newBack(conf)
	if err != nil {
		return err
	}

	discord, err := bot.New(b, conf)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	signaled := make(chan os.Signal, 1)
	signal.Notify(signaled, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	go b.Run(&wg, done)
	go discord.Serve(&wg, done)
	go discord.ListenNotifications(&wg, done, b.GetNotificationsChan())

	sig := <-signaled
	log.Printf("warning: received signal %d", sig)
	close(done)

	log.Print("info: waiting for complete shutdown")
	wg.Wait()
	log.Print("info: shutdown complete")

	return nil
}
