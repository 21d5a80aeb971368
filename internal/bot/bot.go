package bot

import (
	"errors"
	"fmt"
	"io"
	"log"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"inhouse/internal/back"
	"inhouse/internal/config"
	"inhouse/internal/util"

	"github.com/bwmarrin/discordgo"
)

type commandHandler func(player back.Player, m *discordgo.Message, args []string, w io.Writer) error

type Bot struct {
	back   *back.Back
	config *config.Config

	startedAt time.Time
	token     string
	dg        *discordgo.Session

	handlers map[string]commandHandler
}

func New(b *back.Back, conf *config.Config) (*Bot, error) {
	dg, err := discordgo.New("Bot " + conf.DiscordToken)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		back:      b,
		config:    conf,
		token:     conf.DiscordToken,
		dg:        dg,
		startedAt: time.Now(),
	}

	dg.AddHandler(bot.handleMessage)

	bot.handlers = map[string]commandHandler{
		"!help":     bot.cmdHelp,
		"!dev":      bot.cmdDev,
		"!games":    bot.cmdGames,
		"!rank":     bot.cmdRank,
		"!champion": bot.cmdChampion,

		"!queue":   bot.cmdQueue,
		"!leave":   bot.cmdLeave,
		"!confirm": bot.cmdConfirm,
		"!decline": bot.cmdDecline,
		"!cancel":  bot.cmdCancel,
		"!won":     bot.cmdWon,
		"!lost":    bot.cmdLost,
	}

	return bot, nil
}

func (bot *Bot) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	log.Println("info: starting Discord bot")
	wg.Add(1)
	defer wg.Done()
	if err := bot.dg.Open(); err != nil {
		log.Panic(err)
	}

	<-done

	if err := bot.dg.Close(); err != nil {
		log.Printf("error: could not close Discord bot: %s", err)
	}
}

// isListenedChannel tells if commands are accepted on this channel. An empty
// allowlist accepts every channel.
func (bot *Bot) isListenedChannel(channelID string) bool {
	if len(bot.config.DiscordListenIDs) == 0 {
		return true
	}

	for _, v := range bot.config.DiscordListenIDs {
		if v == channelID {
			return true
		}
	}

	return false
}

func (bot *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore webooks, self, bots, non-commands.
	if m.Author == nil || m.Author.ID == s.State.User.ID ||
		m.Author.Bot || !strings.HasPrefix(m.Content, "!") {
		return
	}

	if !bot.isListenedChannel(m.ChannelID) {
		return
	}

	if bot.config.IsDiscordIDBanned(m.Author.ID) {
		log.Printf("warning: ignoring banned user %s", m.Author.ID)
		return
	}

	log.Printf(
		"info: <%s(%s)@%s#%s> %s",
		m.Author.String(), m.Author.ID,
		m.GuildID, m.ChannelID,
		m.Content,
	)

	// Replies go to the channel the command was issued in, queues are a
	// channel-local affair and everyone should see the outcome.
	out := newChannelWriter(s, m.ChannelID)
	defer func() {
		if err := out.Flush(); err != nil {
			log.Printf("error: could not send message: %s", err)
		}
	}()

	defer func() {
		r := recover()
		if r != nil {
			out.Reset()
			fmt.Fprint(out, "Something went very wrong, please tell an admin.")
			log.Print("panic: ", r)
			log.Print(string(debug.Stack()))
		}
	}()

	if err := bot.dispatch(m.Message, out); err != nil {
		out.Reset()
		fmt.Fprintln(out, "There was an error processing your command.")

		if errors.Is(err, errPublic("")) || errors.Is(err, util.ErrPublic("")) {
			fmt.Fprintf(out, "```%s\n```\nIf you need help, send `!help`.", err)
		} else {
			fmt.Fprint(out, "An admin will check the logs when they have time.")
		}

		log.Printf("error: failed to process command: %s", err)
	}
}

func parseCommand(cmd string) (string, []string) {
	parts := strings.Fields(cmd)

	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], nil
	default:
		return parts[0], parts[1:]
	}
}

func (bot *Bot) dispatch(m *discordgo.Message, w io.Writer) error {
	command, args := parseCommand(m.Content)
	handler, ok := bot.handlers[command]
	if !ok {
		return errPublic(fmt.Sprintf("invalid command: %v", m.Content))
	}

	player, err := bot.back.RegisterOrUpdateDiscordPlayer(m.Author.ID, m.Author.Username)
	if err != nil {
		return err
	}

	return handler(player, m, args, w)
}

func (bot *Bot) cmdHelp(_ back.Player, m *discordgo.Message, _ []string, w io.Writer) error {
	fmt.Fprint(w, strings.ReplaceAll(`Available commands:
'''
# Queueing
!queue ROLE…       # queue up for one or more roles (top, jungle, mid, bot, support)
!leave [ROLE|all]  # leave one role queue, this channel's queues, or every queue
!confirm GAME      # confirm a proposed game, everyone leaves their queues
!decline GAME      # decline a proposed game, everyone stays in queue

# Scoring
!won [CHAMPION]    # report your current game as a win for your team
!lost [CHAMPION]   # report your current game as a loss for your team
!champion NAME     # record the champion you played in your latest game

# Misc
!games             # list proposed and ongoing games
!rank              # display your per-role ratings
!help              # display this help message
'''`, "'''", "```"))

	if !bot.config.IsDiscordIDAdmin(m.Author.ID) {
		return nil
	}

	fmt.Fprint(w, strings.ReplaceAll(`Admin-only commands:
'''
!cancel GAME   # void a proposed or ongoing game, no rating moves
!dev error     # error out
!dev panic     # panic and abort
!dev uptime    # display for how long the server has been running
!dev url       # display the link to use when adding the bot to a new server
'''`, "'''", "```"))

	return nil
}
