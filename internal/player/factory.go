package player

import (
	"github.com/PizzaHomicide/kava/internal/config"
	"github.com/PizzaHomicide/kava/internal/log"
)

// CreateVideoPlayer creates a new video player based on the configuration
func CreateVideoPlayer(cfg config.PlayerConfig) VideoPlayer {
	log.Info("Creating video player", "type", cfg.Type)

	switch cfg.Type {
	case "mpv":
		return NewMPVPlayer(cfg)
	default:
		log.Warn("Unknown player type, falling back to MPV", "type", cfg.Type)
		return NewMPVPlayer(cfg)
	}
}
