package accounts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/common"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/fetch"
)

var credentialPattern = regexp.MustCompile(`^[A-Za-z0-9\-_@!?.]{4,50}$`)

// OwnershipVerifier checks a website for the ownership meta tag.
type OwnershipVerifier interface {
	Verify(ctx context.Context, url, tagName, expectedContent string) (bool, error)
}

// TagConfig names the meta tag certifiers publish.
type TagConfig struct {
	Name          string
	ContentPrefix string
}

type Service interface {
	Register(ctx context.Context, name, password string) (*Certifier, error)
	Login(ctx context.Context, name, password string) (*Certifier, error)
	Get(ctx context.Context, id string) (*Certifier, error)
	VerifyWebsite(ctx context.Context, id, url string) (*Certifier, error)
	// OwnershipTag returns the meta element the named certifier must publish.
	OwnershipTag(name string) string
}

type accountService struct {
	repo     Repository
	verifier OwnershipVerifier
	tag      TagConfig
	logger   *zap.Logger
}

func NewService(repo Repository, verifier OwnershipVerifier, tag TagConfig, logger *zap.Logger) Service {
	return &accountService{
		repo:     repo,
		verifier: verifier,
		tag:      tag,
		logger:   logger,
	}
}

func (s *accountService) Register(ctx context.Context, name, password string) (*Certifier, error) {
	if name == "" || password == "" {
		return nil, common.NewError(common.ErrValidation, "Name or password are missing.")
	}
	if !credentialPattern.MatchString(name) || !credentialPattern.MatchString(password) {
		return nil, common.NewError(common.ErrValidation,
			"Name and password must consist of 4-50 characters, including only letters, numbers, and standard punctuation.")
	}

	_, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil:
		return nil, common.NewError(common.ErrAlreadyExists, "An account with the name %s already exists.", name)
	case !errors.Is(err, common.ErrNotFound):
		return nil, fmt.Errorf("failed to look up certifier: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	certifier := &Certifier{
		Name:      name,
		Password:  string(hash),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, certifier); err != nil {
		return nil, fmt.Errorf("failed to create certifier: %w", err)
	}

	s.logger.Info("Certifier registered", zap.String("certifier_id", certifier.ID), zap.String("name", name))
	return certifier, nil
}

func (s *accountService) Login(ctx context.Context, name, password string) (*Certifier, error) {
	if name == "" || password == "" {
		return nil, common.NewError(common.ErrValidation, "Name or password are missing.")
	}

	certifier, err := s.repo.GetByName(ctx, name)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewError(common.ErrInvalidCredentials, "Incorrect credentials.")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up certifier: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(certifier.Password), []byte(password)); err != nil {
		return nil, common.NewError(common.ErrInvalidCredentials, "Incorrect credentials.")
	}
	return certifier, nil
}

func (s *accountService) Get(ctx context.Context, id string) (*Certifier, error) {
	certifier, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewError(common.ErrNotFound, "Account was not found.")
	}
	return certifier, err
}

func (s *accountService) VerifyWebsite(ctx context.Context, id, url string) (*Certifier, error) {
	if url == "" {
		return nil, common.NewError(common.ErrValidation, "URL is missing.")
	}

	certifier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	expected := s.tag.ContentPrefix + certifier.Name
	found, err := s.verifier.Verify(ctx, url, s.tag.Name, expected)
	if err != nil {
		if errors.Is(err, fetch.ErrInvalidURL) {
			return nil, &common.Error{Kind: fmt.Errorf("%w: %w", common.ErrValidation, err), Message: "URL must be an absolute http or https address."}
		}
		return nil, &common.Error{Kind: err, Message: fmt.Sprintf("The website %s could not be checked. Try again later.", url)}
	}
	if !found {
		return nil, common.NewError(common.ErrValidation,
			"Metadata tag was not found. Make sure you followed the steps correctly.")
	}

	now := time.Now().UTC()
	if err := s.repo.SetVerifiedURL(ctx, certifier.ID, url, now); err != nil {
		return nil, fmt.Errorf("failed to save verified url: %w", err)
	}
	certifier.VerifiedURL = url
	certifier.VerifiedAt = now

	s.logger.Info("Certifier verified", zap.String("certifier_id", certifier.ID), zap.String("url", url))
	return certifier, nil
}

func (s *accountService) OwnershipTag(name string) string {
	return fmt.Sprintf(`<meta name="%s" content="%s">`, s.tag.Name, s.tag.ContentPrefix+name)
}
