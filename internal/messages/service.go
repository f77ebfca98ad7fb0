package messages

import "context"

// Repository is the persistence contract for coded messages.
//
// Lookup methods are per-column on purpose: each returns the raw stored value
// for exactly the requested code plus whether a row exists at all. The
// fallback rule lives in Service, not here.
type Repository interface {
	LookupText(ctx context.Context, code string) (string, bool, error)
	LookupAudio(ctx context.Context, code string) ([]byte, bool, error)
	LookupFileName(ctx context.Context, code string) (string, bool, error)
	LookupIsText(ctx context.Context, code string) (bool, bool, error)
	LookupOptions(ctx context.Context, code string) (Options, bool, error)

	Contains(ctx context.Context, code string) (bool, error)
	Codes(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]Entry, error)

	// SetText and SetAudio replace the whole row for the code (no merge).
	SetText(ctx context.Context, code, text string, opts Options) error
	SetAudio(ctx context.Context, code string, audio []byte, fileName string, opts Options) error
	Delete(ctx context.Context, code string) error
}

// Service resolves coded messages with the two-step fallback rule:
// a missing row for a non-empty code resolves against the default code "";
// a missing default resolves to the safe empty value for that column.
//
// Each column is resolved independently: a lookup can mix a code's own
// columns with the default row's. Resolution is deliberately per-column, not
// per-row.
type Service struct {
	repo  Repository
	cache *AudioCache // optional
}

func NewService(repo Repository, cache *AudioCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// ResponseText resolves the spoken text for a code. Safe empty: "".
func (s *Service) ResponseText(ctx context.Context, code string) (string, error) {
	text, ok, err := s.repo.LookupText(ctx, code)
	if err != nil {
		return "", err
	}
	if ok {
		return text, nil
	}
	if code != CodeDefault {
		return s.ResponseText(ctx, CodeDefault)
	}
	return "", nil
}

// ResponseAudio resolves the audio bytes for a code. Safe empty: nil.
func (s *Service) ResponseAudio(ctx context.Context, code string) ([]byte, error) {
	if s.cache != nil {
		if audio, ok := s.cache.Get(ctx, code); ok {
			return audio, nil
		}
	}
	audio, err := s.responseAudio(ctx, code)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Put(ctx, code, audio)
	}
	return audio, nil
}

func (s *Service) responseAudio(ctx context.Context, code string) ([]byte, error) {
	audio, ok, err := s.repo.LookupAudio(ctx, code)
	if err != nil {
		return nil, err
	}
	if ok {
		return audio, nil
	}
	if code != CodeDefault {
		return s.responseAudio(ctx, CodeDefault)
	}
	return nil, nil
}

// ResponseFileName resolves the original upload file name. Safe empty: "".
func (s *Service) ResponseFileName(ctx context.Context, code string) (string, error) {
	name, ok, err := s.repo.LookupFileName(ctx, code)
	if err != nil {
		return "", err
	}
	if ok {
		return name, nil
	}
	if code != CodeDefault {
		return s.ResponseFileName(ctx, CodeDefault)
	}
	return "", nil
}

// ResponseIsText resolves the message kind. Safe empty: text.
func (s *Service) ResponseIsText(ctx context.Context, code string) (bool, error) {
	isText, ok, err := s.repo.LookupIsText(ctx, code)
	if err != nil {
		return true, err
	}
	if ok {
		return isText, nil
	}
	if code != CodeDefault {
		return s.ResponseIsText(ctx, CodeDefault)
	}
	return true, nil
}

// ResponseOptions resolves the behavior flags. Safe empty: both false.
func (s *Service) ResponseOptions(ctx context.Context, code string) (Options, error) {
	opts, ok, err := s.repo.LookupOptions(ctx, code)
	if err != nil {
		return Options{}, err
	}
	if ok {
		return opts, nil
	}
	if code != CodeDefault {
		return s.ResponseOptions(ctx, CodeDefault)
	}
	return Options{}, nil
}

func (s *Service) Contains(ctx context.Context, code string) (bool, error) {
	return s.repo.Contains(ctx, code)
}

func (s *Service) Codes(ctx context.Context) ([]string, error) {
	return s.repo.Codes(ctx)
}

func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.repo.List(ctx)
}

// SetText stores a text message for the code, replacing any previous row.
func (s *Service) SetText(ctx context.Context, code, text string, opts Options) error {
	if err := s.repo.SetText(ctx, code, text, opts); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// SetAudio stores an audio message for the code, replacing any previous row.
func (s *Service) SetAudio(ctx context.Context, code string, audio []byte, fileName string, opts Options) error {
	if err := s.repo.SetAudio(ctx, code, audio, fileName, opts); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) Delete(ctx context.Context, code string) error {
	if err := s.repo.Delete(ctx, code); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// invalidate drops all cached audio. Any write can change what an unrelated
// code resolves to through the default fallback, so the whole generation is
// bumped rather than single keys.
func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
