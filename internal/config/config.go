package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	// DiscordListenIDs is a list of channel ID where the bot will listen and
	// accept commands. Each of those channels runs its own independent queue.
	DiscordListenIDs []string

	// Who is allowed to use `!dev` commands.
	DiscordAdminUserIDs []string

	// Who is not allowed to do anything.
	DiscordBannedUserIDs []string

	DiscordToken string

	// MatchmakingMaxPerRole caps how many waiting players per role the
	// matchmaker considers, zero means the built-in default.
	MatchmakingMaxPerRole int

	// ProposalTimeoutMinutes is how long a proposed game waits for a
	// confirmation before being called off, zero means the built-in default.
	ProposalTimeoutMinutes int
}

func NewFromUserConfigDir() (*Config, error) {
	c := &Config{}
	if err := c.ReloadFromUserConfigDir(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) ProposalTimeout() time.Duration {
	return time.Duration(c.ProposalTimeoutMinutes) * time.Minute
}

func (c *Config) IsDiscordIDAdmin(discordID string) bool {
	for _, v := range c.DiscordAdminUserIDs {
		if v == discordID {
			return true
		}
	}

	return false
}

func (c *Config) IsDiscordIDBanned(discordID string) bool {
	for _, v := range c.DiscordBannedUserIDs {
		if v == discordID {
			return true
		}
	}

	return false
}

func (c *Config) expandFromEnv() {
	vars := []struct {
		src string
		dst *string
	}{
		{"INHOUSE_DISCORD_TOKEN", &c.DiscordToken},
	}

	for _, v := range vars {
		if str := os.Getenv(v.src); str != "" {
			*v.dst = str
		}
	}

	ints := []struct {
		src string
		dst *int
	}{
		{"INHOUSE_MATCHMAKING_MAX_PER_ROLE", &c.MatchmakingMaxPerRole},
		{"INHOUSE_PROPOSAL_TIMEOUT_MINUTES", &c.ProposalTimeoutMinutes},
	}

	for _, v := range ints {
		str := os.Getenv(v.src)
		if str == "" {
			continue
		}

		i, err := strconv.Atoi(str)
		if err != nil {
			log.Printf("warning: ignoring non-integer %s: %s", v.src, err)
			continue
		}

		*v.dst = i
	}
}

func (c *Config) ReloadFromUserConfigDir() error {
	defer c.expandFromEnv()

	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}
	log.Printf("debug: reading conf from %s", path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		*c = Config{}
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(c)
}

func getOrCreateUserConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(configDir, "inhouse")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.json"), nil
}

func (c *Config) Write() error {
	path, err := getOrCreateUserConfigPath()
	if err != nil {
		return err
	}
	log.Printf("debug: writing conf to %s", path)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o700)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(f).Encode(c); err != nil {
		if err2 := f.Close(); err2 != nil {
			return fmt.Errorf("unable to close file (%s) after error: %w", err2, err)
		}

		return err
	}

	return f.Close()
}
