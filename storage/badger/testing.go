package badger

// Stores bundles the badger-backed collaborators for tests.
type Stores struct {
	Backend  *Backend
	Registry *FileRegistry
	Feedback *FeedbackStore
	Vectors  *VectorStore
}

// Close releases the feedback sequence and closes the backend.
func (s *Stores) Close() error {
	if err := s.Feedback.Close(); err != nil {
		return err
	}
	return s.Backend.Close()
}

// NewMemoryStores creates in-memory registry, feedback and vector stores for testing.
// Caller must call Close when done.
func NewMemoryStores() (*Stores, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	feedback, err := NewFeedbackStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Stores{
		Backend:  backend,
		Registry: NewFileRegistry(backend),
		Feedback: feedback,
		Vectors:  NewVectorStore(backend, "resumes", DefaultDimension),
	}, nil
}
