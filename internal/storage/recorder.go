package storage

import (
	"log"
	"strings"
	"time"

	"github.com/r-Techsupport/turingbot/internal/engine"
)

// RecordUsage implements engine.UsageRecorder: every executed command lands
// in the history log.
func (s *Storage) RecordUsage(path []string, rc *engine.RequestContext) {
	err := s.AppendCommandRecord(CommandRecord{
		UserID:    rc.UserID,
		ChannelID: rc.ChannelID,
		Command:   strings.Join(path, " "),
		Datetime:  time.Now(),
	})
	if err != nil {
		log.Printf("[WARN] Failed to record command usage: %v", err)
	}
}
