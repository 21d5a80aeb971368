package bot

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"inhouse/internal/back"
	"inhouse/internal/util"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

func parseGameID(str string) (util.UUIDAsBlob, error) {
	id, err := uuid.Parse(str)
	if err != nil {
		return util.UUIDAsBlob{}, errPublic(fmt.Sprintf("invalid game ID: %s", str))
	}

	return util.UUIDAsBlob(id), nil
}

func (bot *Bot) cmdConfirm(_ back.Player, m *discordgo.Message, args []string, w io.Writer) error {
	if len(args) != 1 {
		return errPublic("expected one argument: the game ID from the proposal")
	}

	id, err := parseGameID(args[0])
	if err != nil {
		return err
	}

	game, err := bot.back.ConfirmGame(id)
	if err != nil {
		if errors.Is(err, back.ErrNotCancellable) {
			return errPublic("this game is no longer awaiting confirmation")
		}
		return err
	}

	fmt.Fprintf(w, "Game %s is on, report it with `!won` or `!lost` when it ends.", game.ID)

	return nil
}

func (bot *Bot) cmdDecline(_ back.Player, m *discordgo.Message, args []string, w io.Writer) error {
	if len(args) != 1 {
		return errPublic("expected one argument: the game ID from the proposal")
	}

	id, err := parseGameID(args[0])
	if err != nil {
		return err
	}

	if _, err := bot.back.DeclineGame(id); err != nil {
		if errors.Is(err, back.ErrNotCancellable) {
			return errPublic("this game is no longer awaiting confirmation")
		}
		return err
	}

	return nil
}

func (bot *Bot) cmdCancel(_ back.Player, m *discordgo.Message, args []string, w io.Writer) error {
	if !bot.config.IsDiscordIDAdmin(m.Author.ID) {
		return errPublic("only an admin can cancel a game")
	}
	if len(args) != 1 {
		return errPublic("expected one argument: the game ID")
	}

	id, err := parseGameID(args[0])
	if err != nil {
		return err
	}

	game, err := bot.back.CancelGame(id)
	if err != nil {
		switch {
		case errors.Is(err, back.ErrAlreadyScored):
			return errPublic("this game already has a result, report the opposite result to correct it")
		case errors.Is(err, back.ErrNotCancellable):
			return errPublic("this game cannot be cancelled")
		}
		return err
	}

	fmt.Fprintf(w, "Game %s has been cancelled, no rating moved.", game.ID)

	return nil
}

func (bot *Bot) cmdWon(player back.Player, m *discordgo.Message, args []string, w io.Writer) error {
	return bot.reportResult(player, args, w, true)
}

func (bot *Bot) cmdLost(player back.Player, m *discordgo.Message, args []string, w io.Writer) error {
	return bot.reportResult(player, args, w, false)
}

func (bot *Bot) reportResult(player back.Player, args []string, w io.Writer, won bool) error {
	if len(args) > 1 {
		return errPublic("expected at most one argument: the champion you played")
	}

	game, err := bot.back.ReportResult(player, won)
	if err != nil {
		var inconsistency back.ReplayInconsistencyError
		switch {
		case errors.Is(err, back.ErrNoActiveGame):
			return errPublic("you have no game to report")
		case errors.As(err, &inconsistency):
			fmt.Fprint(w, "The result was recorded but some rating histories could not "+
				"be replayed, the affected ratings are frozen until an admin reranks.")
			return nil
		}
		return err
	}

	if len(args) == 1 {
		if _, err := bot.back.SetChampion(player, args[0], &game.ID); err != nil {
			return err
		}
	}

	return nil
}

func (bot *Bot) cmdChampion(player back.Player, m *discordgo.Message, args []string, w io.Writer) error {
	if len(args) != 1 {
		return errPublic("expected one argument: the champion you played")
	}

	if _, err := bot.back.SetChampion(player, args[0], nil); err != nil {
		if errors.Is(err, back.ErrNoActiveGame) {
			return errPublic("you have no recent game to annotate")
		}
		return err
	}

	fmt.Fprintf(w, "Noted, %s played %s.", player.Name, args[0])

	return nil
}

func (bot *Bot) cmdGames(_ back.Player, m *discordgo.Message, args []string, w io.Writer) error {
	if len(args) > 0 {
		return errPublic("this command takes no argument")
	}

	games, players, err := bot.back.GetUnresolvedGames()
	if err != nil {
		return err
	}

	if len(games) == 0 {
		fmt.Fprint(w, "There is no proposed or ongoing game.")
		return nil
	}

	fmt.Fprint(w, "Proposed and ongoing games:\n")
	for k := range games {
		game := &games[k]

		names := make([]string, 0, len(game.Participants))
		for _, participant := range game.Participants {
			names = append(names, players[participant.PlayerID].Name)
		}

		fmt.Fprintf(
			w, "%d. `%s` (%s): %s\n",
			k+1, game.ID, game.Status.Name(), strings.Join(names, ", "),
		)
	}

	return nil
}

func (bot *Bot) cmdRank(player back.Player, m *discordgo.Message, args []string, w io.Writer) error {
	ratings, err := bot.back.GetPlayerRatings(player.ID)
	if err != nil {
		return err
	}

	if len(ratings) == 0 {
		fmt.Fprintf(w, "%s has no rating yet, queue up for a role first.", player.Name)
		return nil
	}

	fmt.Fprintf(w, "Ratings for %s:\n```\n", player.Name)
	for _, rating := range ratings {
		fmt.Fprintf(
			w, "%-10s%6.1f (μ=%.1f, σ=%.1f)\n",
			rating.Role.Name(), rating.Conservative(), rating.Mu, rating.Sigma,
		)
	}
	fmt.Fprint(w, "```")

	if player.RatingFrozen {
		fmt.Fprint(w, "\nYour rating is frozen pending an admin rerank.")
	}

	return nil
}
