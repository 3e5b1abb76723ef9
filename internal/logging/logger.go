package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON stdout handler as the slog default. Called before
// config loads, so startup errors are already structured; main later swaps in
// a MultiHandler once the database handler is available.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}
