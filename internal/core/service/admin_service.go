package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kopinusa/storefront/internal/api/metrics"
	"github.com/kopinusa/storefront/internal/core/domain"
	"github.com/kopinusa/storefront/internal/core/listing"
	"github.com/kopinusa/storefront/internal/core/ports"
)

// AdminService hands out the back-office list controllers. Each admin
// session gets its own controller per collection, kept in the workspace, so
// the cached collection and open dialog survive between requests.
type AdminService struct {
	backend   ports.Backend
	workspace *listing.Workspace
	activity  ports.ActivityRepository
	log       zerolog.Logger
}

var _ ports.AdminService = (*AdminService)(nil)

func NewAdminService(backend ports.Backend, workspace *listing.Workspace, activity ports.ActivityRepository, log zerolog.Logger) *AdminService {
	return &AdminService{
		backend:   backend,
		workspace: workspace,
		activity:  activity,
		log:       log.With().Str("component", "admin").Logger(),
	}
}

func (s *AdminService) Users(sess *domain.Session) (*listing.Controller[domain.User], error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	return controllerFor(s, sess, UserSchema, usersPath, userForm{}, listing.Options{
		SelfID:      sess.Identity.UserID,
		AllowCreate: true,
		AllowEdit:   true,
		AllowDelete: true,
	})
}

func (s *AdminService) Menus(sess *domain.Session) (*listing.Controller[domain.MenuItem], error) {
	return controllerFor(s, sess, MenuSchema, menusPath, menuForm{}, listing.Options{
		AllowCreate: true,
		AllowEdit:   true,
		AllowDelete: true,
	})
}

func (s *AdminService) Variants(sess *domain.Session) (*listing.Controller[domain.Variant], error) {
	return controllerFor(s, sess, VariantSchema, variantsPath, variantForm{}, listing.Options{
		AllowCreate: true,
		AllowEdit:   true,
		AllowDelete: true,
	})
}

func (s *AdminService) Orders(sess *domain.Session) (*listing.Controller[domain.Order], error) {
	return controllerFor(s, sess, OrderSchema, ordersPath, orderForm{}, listing.Options{
		AllowEdit: true,
	})
}

// Evict drops the session's controllers. It is registered as a logout
// teardown.
func (s *AdminService) Evict(_ context.Context, sessionID string) {
	s.workspace.Evict(sessionID)
	metrics.WorkspaceControllers.Set(float64(s.workspace.Len()))
}

func controllerFor[T any](
	s *AdminService,
	sess *domain.Session,
	schema listing.Schema[T],
	path string,
	form listing.Form[T],
	opts listing.Options,
) (*listing.Controller[T], error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !sess.HasRole(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}

	opts.OnMutation = s.recorder(sess, schema.Kind)

	ctrl := listing.Acquire(s.workspace, sess.ID, schema.Kind, func() *listing.Controller[T] {
		source := listing.NewRESTSource[T](s.backend.WithToken(sess.Token), path)
		return listing.New(schema, source, form, opts, s.log.With().Str("session_id", sess.ID).Logger())
	})
	metrics.WorkspaceControllers.Set(float64(s.workspace.Len()))
	return ctrl, nil
}

// recorder appends each successful mutation to the audit trail. A failed
// write is logged and never fails the mutation.
func (s *AdminService) recorder(sess *domain.Session, kind string) func(context.Context, listing.Mode, string) {
	actorID, actorEmail := sess.Identity.UserID, sess.Identity.Email
	return func(ctx context.Context, mode listing.Mode, targetID string) {
		metrics.AdminMutationsTotal.WithLabelValues(kind, string(mode)).Inc()
		if s.activity == nil {
			return
		}
		err := s.activity.Record(context.WithoutCancel(ctx), &domain.AdminActivity{
			ActorID:    actorID,
			ActorEmail: actorEmail,
			Entity:     kind,
			Action:     string(mode),
			TargetID:   targetID,
			Timestamp:  time.Now().UTC(),
		})
		if err != nil {
			s.log.Warn().Err(err).Str("entity", kind).Str("action", string(mode)).Msg("record admin activity failed")
		}
	}
}

// Activity returns the most recent admin mutations.
func (s *AdminService) Activity(ctx context.Context, sess *domain.Session, limit int) ([]domain.AdminActivity, error) {
	if !sess.HasRole(domain.RoleAdmin) {
		return nil, domain.ErrForbidden
	}
	if s.activity == nil {
		return []domain.AdminActivity{}, nil
	}
	return s.activity.Recent(ctx, limit)
}
