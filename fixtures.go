package main

import (
	"fmt"
	"log"

	"inhouse/internal/back"
)

// loadFixtures registers enough players to fill two queues during
// development, the fake Discord IDs line up with nothing real.
func loadFixtures() error {
	b, err := back.New("sqlite3", "./inhouse.db", 0, 0)
	if err != nil {
		return err
	}

	names := []string{
		"Darius", "Elise", "Ahri", "Jinx", "Thresh",
		"Gnar", "Sejuani", "Viktor", "Ashe", "Braum",
		"Riven", "Nidalee",
	}

	for k, name := range names {
		player, err := b.RegisterOrUpdateDiscordPlayer(fmt.Sprintf("%06d", k+1), name)
		if err != nil {
			return err
		}

		log.Printf("info: created player <%s> (%s)", player.Name, player.ID)
	}

	return nil
}
