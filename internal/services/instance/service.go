package instance

import (
	"context"
	"sync"

	"github.com/decred/slog"

	"keysync/internal/domain"
	"keysync/internal/validate"
)

// lifecycle state of the facade.
type state int

const (
	stateUninitialized state = iota
	stateInitializing
	stateReady
	stateDisposed
)

func (s state) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateInitializing:
		return "initializing"
	case stateReady:
		return "ready"
	case stateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// defaultOneTimePreKeys is how many one-time pre-keys Initialize tops the
// store up to.
const defaultOneTimePreKeys = 10

// Service is the protocol facade: one instance per install, owning the
// lifecycle over identity, pre-keys and the directory client. Lifecycle
// transitions are serialized; queries run concurrently once Ready.
type Service struct {
	identity domain.IdentityService
	prekeys  domain.PreKeyService
	creds    domain.CredentialStore
	dir      domain.KeyDirectoryClient
	dirURL   string
	log      slog.Logger

	mu     sync.RWMutex
	state  state
	user   domain.UserID
	device domain.DeviceID

	watchCancel context.CancelFunc
	watchWG     sync.WaitGroup
}

// New returns an uninitialized facade. dirURL is validated on Initialize,
// not here, so construction never fails.
func New(
	identity domain.IdentityService,
	prekeys domain.PreKeyService,
	creds domain.CredentialStore,
	dir domain.KeyDirectoryClient,
	dirURL string,
) *Service {
	return &Service{
		identity: identity,
		prekeys:  prekeys,
		creds:    creds,
		dir:      dir,
		dirURL:   dirURL,
		log:      slog.Disabled,
	}
}

// SetLogger replaces the disabled default logger.
func (s *Service) SetLogger(log slog.Logger) { s.log = log }

// Initialize provisions credentials for user and brings the facade to Ready.
// Validation failures are reported before any mutation. Any later failure
// rolls the lifecycle back to Uninitialized; credentials already persisted
// stay persisted, so a retry resumes rather than restarts.
func (s *Service) Initialize(ctx context.Context, user domain.UserID, opts domain.InitializeOptions) error {
	if err := validate.UserID(user.String()); err != nil {
		return err
	}
	if err := validate.DirectoryURL(s.dirURL); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case stateDisposed:
		return domain.E(domain.Initialization, "instance is disposed")
	case stateInitializing, stateReady:
		return domain.Ef(domain.Initialization, "instance is already %s", s.state)
	}
	s.state = stateInitializing

	if err := s.initialize(ctx, user, opts); err != nil {
		s.state = stateUninitialized
		if domain.KindOf(err) == domain.Validation {
			return err
		}
		return domain.Wrap(domain.Initialization, err, "initialize instance")
	}

	s.state = stateReady
	s.user = user
	s.log.Infof("Instance ready for %s as %s", s.user, s.device)
	return nil
}

func (s *Service) initialize(ctx context.Context, user domain.UserID, opts domain.InitializeOptions) error {
	_, _, created, err := s.identity.EnsureIdentity(opts.GenerateKeysIfAbsent)
	if err != nil {
		return err
	}
	if created {
		s.log.Infof("Provisioned new identity for %s", user)
	}

	dev, err := s.creds.GetOrCreateDeviceID(user)
	if err != nil {
		return err
	}
	s.device = dev.DeviceID

	if opts.GenerateKeysIfAbsent {
		if err := s.prekeys.EnsurePreKeys(defaultOneTimePreKeys); err != nil {
			return err
		}
	}

	if opts.AutoSync {
		bundle, err := s.prekeys.BuildBundle(user, s.device)
		if err != nil {
			return err
		}
		outcome, err := s.dir.Upload(ctx, bundle)
		if err != nil {
			return err
		}
		s.log.Infof("Initial key publish: %s", outcome)
		s.startWatch(user)
	}
	return nil
}

// startWatch keeps a directory watch on the local user's entry and drains
// the pending queue on every update. A watch that cannot be established is
// logged and skipped; it never fails initialization.
func (s *Service) startWatch(user domain.UserID) {
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := s.dir.WatchUser(ctx, user)
	if err != nil {
		cancel()
		s.log.Warnf("Directory watch unavailable: %v", err)
		return
	}
	s.watchCancel = cancel
	s.watchWG.Add(1)
	go func() {
		defer s.watchWG.Done()
		for range ch {
			applied, err := s.dir.DrainQueue(ctx)
			if err != nil {
				s.log.Debugf("Queue drain stopped: %v", err)
			} else if applied > 0 {
				s.log.Infof("Drained %d pending directory writes", applied)
			}
		}
	}()
}

// PublishKeys rebuilds the bundle from the credential store and uploads it.
// The facade must be Ready.
func (s *Service) PublishKeys(ctx context.Context) (domain.UploadOutcome, error) {
	s.mu.RLock()
	st, user, device := s.state, s.user, s.device
	s.mu.RUnlock()
	if st != stateReady {
		return "", domain.Ef(domain.Key, "cannot publish keys while %s", st)
	}

	bundle, err := s.prekeys.BuildBundle(user, device)
	if err != nil {
		return "", err
	}
	return s.dir.Upload(ctx, bundle)
}

// HasKeysForUser reports whether user has any published bundle. Network
// failures surface as errors rather than a false.
func (s *Service) HasKeysForUser(ctx context.Context, user domain.UserID) (bool, error) {
	if err := validate.UserID(user.String()); err != nil {
		return false, err
	}
	s.mu.RLock()
	st := s.state
	s.mu.RUnlock()
	if st != stateReady {
		return false, domain.Ef(domain.Key, "cannot query directory while %s", st)
	}
	return s.dir.HasKeysForUser(ctx, user)
}

// CurrentBundle reports the freshest publishable bundle, or false when no
// device identity has been provisioned yet. It is the refresh source for
// queued directory writes.
func (s *Service) CurrentBundle() (domain.PreKeyBundle, bool, error) {
	dev, ok, err := s.creds.DeviceIdentity()
	if err != nil || !ok {
		return domain.PreKeyBundle{}, false, err
	}
	bundle, err := s.prekeys.BuildBundle(dev.UserID, dev.DeviceID)
	if err != nil {
		return domain.PreKeyBundle{}, false, err
	}
	return bundle, true, nil
}

// Info recomputes the state projection from the credential store. It never
// fails; storage errors degrade to false fields and are logged.
func (s *Service) Info() domain.InstanceInfo {
	s.mu.RLock()
	info := domain.InstanceInfo{
		UserID:      s.user,
		DeviceID:    s.device,
		Initialized: s.state == stateReady,
	}
	s.mu.RUnlock()

	if info.UserID == "" {
		if dev, ok, err := s.creds.DeviceIdentity(); err != nil {
			s.log.Warnf("Reading device identity: %v", err)
		} else if ok {
			info.UserID, info.DeviceID = dev.UserID, dev.DeviceID
		}
	}

	hasIdentity, err := s.creds.HasIdentityKeys()
	if err != nil {
		s.log.Warnf("Reading identity keys: %v", err)
		return info
	}
	_, hasSPK, err := s.creds.CurrentSignedPreKeyID()
	if err != nil {
		s.log.Warnf("Reading signed pre-key id: %v", err)
		return info
	}
	info.HasKeys = hasIdentity && hasSPK
	return info
}

// Dispose tears the facade down: the watch stops and every further lifecycle
// call fails. Credentials on disk are untouched. Dispose is idempotent.
func (s *Service) Dispose() error {
	s.mu.Lock()
	if s.state == stateDisposed {
		s.mu.Unlock()
		return nil
	}
	s.state = stateDisposed
	cancel := s.watchCancel
	s.watchCancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.watchWG.Wait()
	s.log.Infof("Instance disposed")
	return nil
}

// Compile-time assertion that Service implements domain.Instance.
var _ domain.Instance = (*Service)(nil)
