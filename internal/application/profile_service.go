package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/internal/domain/state"
	"github.com/oksasatya/vendor-directory/pkg/helpers"
	"github.com/oksasatya/vendor-directory/pkg/validation"
)

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type UpdateProfileInput struct {
	Name  *string `json:"name" binding:"omitempty,min=2,max=120"`
	Photo string  `json:"photo" binding:"omitempty,datauri"`
}

// ProfileService issues tokens bound to a device session and edits the
// signed-in account.
type ProfileService struct {
	*Deps
	JWT      *helpers.JWTManager
	Sessions *SessionManager
}

func NewProfileService(d *Deps, jwt *helpers.JWTManager, sessions *SessionManager) *ProfileService {
	return &ProfileService{Deps: d, JWT: jwt, Sessions: sessions}
}

// IssueTokens signs an access/refresh pair for u on the session sessionID.
func (p *ProfileService) IssueTokens(ctx context.Context, u *entity.User, sessionID string) (TokenPair, error) {
	access, aexp, err := p.JWT.GenerateAccessToken(u.ID, sessionID)
	if err != nil {
		p.logger().WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return TokenPair{}, err
	}
	refresh, rexp, err := p.JWT.GenerateRefreshToken(u.ID, sessionID)
	if err != nil {
		p.logger().WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Resolve maps an access token to its session. The token is only valid while
// that session is still signed in as the token's user.
func (p *ProfileService) Resolve(ctx context.Context, accessToken string) (*Session, entity.User, error) {
	claims, err := p.JWT.ParseAccessToken(accessToken)
	if err != nil {
		return nil, entity.User{}, ErrInvalidToken
	}
	return p.signedIn(claims.SessionID, claims.UserID)
}

// Refresh rotates the token pair of a session that is still signed in.
func (p *ProfileService) Refresh(ctx context.Context, refreshToken string) (TokenPair, *Session, error) {
	claims, err := p.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, nil, ErrInvalidToken
	}
	s, u, err := p.signedIn(claims.SessionID, claims.UserID)
	if err != nil {
		return TokenPair{}, nil, err
	}
	pair, err := p.IssueTokens(ctx, &u, s.ID)
	if err != nil {
		return TokenPair{}, nil, err
	}
	s.Touch()
	return pair, s, nil
}

func (p *ProfileService) signedIn(sessionID, userID string) (*Session, entity.User, error) {
	s, ok := p.Sessions.Lookup(sessionID)
	if !ok {
		return nil, entity.User{}, ErrInvalidToken
	}
	u, err := currentUser(s.State())
	if err != nil || u.ID != userID {
		return nil, entity.User{}, ErrInvalidToken
	}
	return s, u, nil
}

func (p *ProfileService) GetProfile(s *Session) (entity.User, error) {
	u, err := currentUser(s.State())
	if err != nil {
		return entity.User{}, err
	}
	return u.Public(), nil
}

// UpdateProfile changes the name and photo of the signed-in account.
func (p *ProfileService) UpdateProfile(ctx context.Context, s *Session, in UpdateProfileInput) (*entity.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	u, err := currentUser(s.State())
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Photo != "" {
		url, err := p.uploadPhoto(ctx, "users", u.ID, in.Photo)
		if err != nil {
			return nil, err
		}
		u.PhotoURL = url
	}
	s.Dispatch(state.UpdateUser{User: u})
	s.Touch()
	p.logger().WithFields(logrus.Fields{"session": s.ID, "user_id": u.ID}).Info("profile updated")
	out := u.Public()
	return &out, nil
}

// ToggleTheme flips the color scheme of the device; it needs no account.
func (p *ProfileService) ToggleTheme(s *Session) state.Theme {
	return s.Dispatch(state.ToggleTheme{}).Theme
}
