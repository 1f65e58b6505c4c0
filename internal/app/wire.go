package app

import (
	"net/http"

	"keysync/internal/crypto"
	"keysync/internal/directory"
	"keysync/internal/domain"
	"keysync/internal/platform"
	identitysvc "keysync/internal/services/identity"
	instancesvc "keysync/internal/services/instance"
	prekeysvc "keysync/internal/services/prekey"
	"keysync/internal/store"
)

// Wire bundles all stores, services and clients for the CLI.
type Wire struct {
	Credentials domain.CredentialStore
	Queue       domain.QueueStore
	Directory   domain.KeyDirectoryClient
	Identity    domain.IdentityService
	PreKeys     domain.PreKeyService
	Instance    domain.Instance
	HTTP        *http.Client
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	vault := store.NewFileVault(cfg.Home, cfg.Passphrase)
	creds := store.NewCredentials(vault, platform.NewHost())
	queue := store.NewFileQueue(cfg.Home)

	dir := directory.NewHTTP(cfg.DirectoryURL, httpClient)
	dirClient := directory.NewClient(dir, queue)

	suite := crypto.NewSuite()
	idSvc := identitysvc.New(creds, suite)
	pkSvc := prekeysvc.New(creds, suite)
	inst := instancesvc.New(idSvc, pkSvc, creds, dirClient, cfg.DirectoryURL)

	// Queued writes refresh against the freshest local bundle on replay.
	dirClient.SetBundleSource(inst.CurrentBundle)

	if cfg.Log != nil {
		creds.SetLogger(cfg.Log.Logger("STOR"))
		dir.SetLogger(cfg.Log.Logger("DIRC"))
		dirClient.SetLogger(cfg.Log.Logger("DIRC"))
		idSvc.SetLogger(cfg.Log.Logger("CORE"))
		pkSvc.SetLogger(cfg.Log.Logger("CORE"))
		inst.SetLogger(cfg.Log.Logger("CORE"))
	}

	return &Wire{
		Credentials: creds,
		Queue:       queue,
		Directory:   dirClient,
		Identity:    idSvc,
		PreKeys:     pkSvc,
		Instance:    inst,
		HTTP:        httpClient,
	}, nil
}
