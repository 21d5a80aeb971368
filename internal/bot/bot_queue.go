package bot

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"inhouse/internal/back"

	"github.com/bwmarrin/discordgo"
)

// resolveRole accepts the role names the community actually types.
func resolveRole(str string) (back.Role, error) {
	switch strings.ToLower(str) {
	case "top":
		return back.RoleTop, nil
	case "jungle", "jg", "jungler":
		return back.RoleJungle, nil
	case "mid", "middle":
		return back.RoleMid, nil
	case "bot", "adc", "bottom":
		return back.RoleBot, nil
	case "support", "supp", "sup":
		return back.RoleSupport, nil
	default:
		return 0, errPublic(fmt.Sprintf("invalid role: %s", str))
	}
}

func (bot *Bot) cmdQueue(player back.Player, m *discordgo.Message, args []string, w io.Writer) error {
	if len(args) < 1 {
		return errPublic("you need to give at least one role, eg. `!queue mid support`")
	}

	roles := make([]back.Role, 0, len(args))
	for _, arg := range args {
		role, err := resolveRole(arg)
		if err != nil {
			return err
		}

		roles = append(roles, role)
	}

	if _, err := bot.back.JoinQueue(m.ChannelID, player, roles); err != nil {
		if errors.Is(err, back.ErrAlreadyInGame) {
			return errPublic("you have a game pending, report or decline it before queueing again")
		}
		return err
	}

	return nil
}

func (bot *Bot) cmdLeave(player back.Player, m *discordgo.Message, args []string, w io.Writer) error {
	switch len(args) {
	case 0:
		bot.back.LeaveQueue(m.ChannelID, player, false)
		fmt.Fprintf(w, "%s left this channel's queues.", player.Name)
	case 1:
		if strings.EqualFold(args[0], "all") {
			bot.back.LeaveQueue(m.ChannelID, player, true)
			fmt.Fprintf(w, "%s left every queue.", player.Name)
			return nil
		}

		role, err := resolveRole(args[0])
		if err != nil {
			return err
		}

		bot.back.LeaveQueueRole(m.ChannelID, player, role)
		fmt.Fprintf(w, "%s left the %s queue.", player.Name, role.Name())
	default:
		return errPublic("expected at most one argument: a role or `all`")
	}

	return nil
}
