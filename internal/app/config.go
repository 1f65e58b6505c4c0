package app

import (
	"net/http"

	"keysync/internal/logging"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home         string           // config directory, e.g. $HOME/.keysync
	DirectoryURL string           // key directory base URL, e.g. https://keys.example.org
	Passphrase   string           // protects the credential vault
	HTTP         *http.Client     // optional; defaults to http.DefaultClient
	Log          *logging.Backend // optional; components stay silent without it
}
