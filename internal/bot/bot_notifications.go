package bot

import (
	"io"
	"log"
	"sync"

	"inhouse/internal/back"
)

// ListenNotifications drains the core notifications channel and relays each
// notification to its Discord recipient until shutdown.
func (bot *Bot) ListenNotifications(
	wg *sync.WaitGroup,
	done <-chan struct{},
	notifs <-chan back.Notification,
) {
	wg.Add(1)
	defer wg.Done()

	for {
		select {
		case <-done:
			log.Print("info: stopped listening for notifications")
			return
		case notif := <-notifs:
			if err := bot.sendNotification(&notif); err != nil {
				log.Printf("error: unable to send notification: %s", err)
			}
		}
	}
}

func (bot *Bot) sendNotification(notif *back.Notification) error {
	w, err := bot.getWriterForNotification(notif)
	if err != nil {
		return err
	}

	// A nil writer swallows the body, see channelWriter.
	if _, err := io.Copy(w, notif); err != nil {
		return err
	}

	return w.Flush()
}

func (bot *Bot) getWriterForNotification(notif *back.Notification) (*channelWriter, error) {
	switch notif.RecipientType {
	case back.NotificationRecipientTypeDiscordUser:
		return newUserChannelWriter(bot.dg, notif.Recipient)
	case back.NotificationRecipientTypeDiscordChannel:
		return newChannelWriter(bot.dg, notif.Recipient), nil
	default:
		log.Printf("warning: discarding notification with recipient type %d", notif.RecipientType)
		return nil, nil
	}
}
