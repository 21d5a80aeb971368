package bot

import (
	"fmt"
	"io"
	"time"

	"inhouse/internal/back"
	"inhouse/internal/util"

	"github.com/bwmarrin/discordgo"
)

func (bot *Bot) cmdDev(_ back.Player, m *discordgo.Message, args []string, out io.Writer) error {
	if !bot.config.IsDiscordIDAdmin(m.Author.ID) {
		return fmt.Errorf("!dev command ran by a non-admin: %v", args)
	}
	if len(args) < 1 {
		return util.ErrPublic("need a subcommand")
	}

	switch args[0] { // nolint:gocritic
	case "panic":
		panic("an admin asked me to panic")
	case "uptime":
		fmt.Fprintf(out, "The bot has been online for %s", time.Since(bot.startedAt))
	case "error":
		return util.ErrPublic("here's your error")
	case "rerank":
		if err := bot.back.Rerank(); err != nil {
			return err
		}
		fmt.Fprint(out, "Recomputed every rating from the stored game histories.")
	case "url":
		fmt.Fprintf(
			out,
			"https://discordapp.com/api/oauth2/authorize?client_id=%s&scope=bot&permissions=%d",
			bot.dg.State.User.ID,
			discordgo.PermissionViewChannel|discordgo.PermissionSendMessages|
				discordgo.PermissionMentionEveryone,
		)
	}

	return nil
}
