package back

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

type NotificationRecipientType int

const (
	NotificationRecipientTypeDiscordChannel NotificationRecipientType = 0
	NotificationRecipientTypeDiscordUser    NotificationRecipientType = 1
)

type NotificationType int

const (
	NotificationTypeQueueState NotificationType = iota
	NotificationTypeGameProposal
	NotificationTypeGameProposalDeclined
	NotificationTypeGameResult
	NotificationTypeGameCorrection
)

type Notification struct {
	RecipientType NotificationRecipientType
	Recipient     string
	Type          NotificationType

	body bytes.Buffer
}

func (n *Notification) Printf(str string, args ...interface{}) (int, error) {
	return fmt.Fprintf(&n.body, str, args...)
}

func (n *Notification) Print(args ...interface{}) (int, error) {
	return fmt.Fprint(&n.body, args...)
}

func (n *Notification) Read(p []byte) (int, error) {
	return n.body.Read(p)
}

func NotificationTypeName(typ NotificationType) string {
	switch typ {
	case NotificationTypeQueueState:
		return "QueueState"
	case NotificationTypeGameProposal:
		return "GameProposal"
	case NotificationTypeGameProposalDeclined:
		return "GameProposalDeclined"
	case NotificationTypeGameResult:
		return "GameResult"
	case NotificationTypeGameCorrection:
		return "GameCorrection"
	default:
		return "invalid"
	}
}

// For debugging purposes only.
func (n *Notification) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(
		&buf,
		"type %s, recipient \"%s\"",
		NotificationTypeName(n.Type),
		n.Recipient,
	)

	// HACK: Ensure its on one line (and safe to print)
	content, _ := json.Marshal(n.body.String())
	fmt.Fprintf(&buf, ", contents: %s", string(content))

	return buf.String()
}

// notify hands the notification to whoever listens on the notifications
// channel. Notifications are fire-and-forget: when nobody drains the
// channel they are dropped, never blocking a state transition.
func (b *Back) notify(notif *Notification) {
	select {
	case b.notifications <- *notif:
	default:
		log.Printf("warning: dropped notification (%s)", notif.String())
	}
}

func (b *Back) sendQueueStateNotification(channelID string, snapshot map[Role][]Player) {
	notif := Notification{
		RecipientType: NotificationRecipientTypeDiscordChannel,
		Recipient:     channelID,
		Type:          NotificationTypeQueueState,
	}

	notif.Print("Current queue:\n```\n")
	for _, role := range Roles {
		names := make([]string, 0, len(snapshot[role]))
		for _, player := range snapshot[role] {
			names = append(names, player.Name)
		}

		notif.Printf("%-10s%s\n", role.Name(), strings.Join(names, ", "))
	}
	notif.Print("```")

	b.notify(&notif)
}

func (b *Back) sendProposalNotification(game *Game, composition Composition) {
	notif := Notification{
		RecipientType: NotificationRecipientTypeDiscordChannel,
		Recipient:     game.ChannelID,
		Type:          NotificationTypeGameProposal,
	}

	mentions := make([]string, 0, len(composition))
	for k := range composition {
		player := composition[k].Player
		if player.DiscordID.Valid {
			mentions = append(mentions, "<@"+player.DiscordID.String+">")
		} else {
			mentions = append(mentions, player.Name)
		}
	}

	notif.Printf("A match has been found for %s.\n", strings.Join(mentions, ", "))
	notif.Printf("```\n%s```\n", composition.String())
	notif.Printf(
		"Confirm with `!confirm %s` when everyone is ready, or `!decline %s` to stay in queue.\n",
		game.ID, game.ID,
	)

	if game.Mismatch {
		notif.Print("**WARNING**: this game might be a slight mismatch.\n")
	}

	b.notify(&notif)
}

func (b *Back) sendProposalDeclinedNotification(game *Game, reason string) {
	notif := Notification{
		RecipientType: NotificationRecipientTypeDiscordChannel,
		Recipient:     game.ChannelID,
		Type:          NotificationTypeGameProposalDeclined,
	}

	notif.Printf(
		"The proposed game %s has been called off: %s.\nEveryone is still in queue.",
		game.ID, reason,
	)

	b.notify(&notif)
}

func (b *Back) sendResultNotification(game *Game) {
	notif := Notification{
		RecipientType: NotificationRecipientTypeDiscordChannel,
		Recipient:     game.ChannelID,
		Type:          NotificationTypeGameResult,
	}

	notif.Printf(
		"Game %s has been scored as a **%s** side victory.",
		game.ID, game.Winner.Name(),
	)

	b.notify(&notif)
}

func (b *Back) sendCorrectionNotification(game *Game) {
	notif := Notification{
		RecipientType: NotificationRecipientTypeDiscordChannel,
		Recipient:     game.ChannelID,
		Type:          NotificationTypeGameCorrection,
	}

	notif.Printf(
		"**/!\\ Game result changed for game %s**: the **%s** side now wins.\n"+
			"Ratings will be recomputed from each participant's game history.",
		game.ID, game.Winner.Name(),
	)

	b.notify(&notif)
}
