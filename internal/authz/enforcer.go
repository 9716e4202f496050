// Package authz decides which role may perform which action on which part
// of the catalog. Subjects are role names; admin inherits every user grant.
package authz

import (
	_ "embed"
	"fmt"
	"net/http"
	"os"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"

	"github.com/JustinTDCT/mediacat/internal/apperr"
	"github.com/JustinTDCT/mediacat/internal/auth"
	"github.com/JustinTDCT/mediacat/internal/httputil"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Objects and actions named in the policy.
const (
	ObjCatalog    = "catalog"
	ObjWatchState = "watch_state"
	ObjMedia      = "media"
	ObjStreams    = "streams"
	ObjSubtitles  = "subtitles"
	ObjUsers      = "users"
	ObjStats      = "stats"

	ActRead   = "read"
	ActWrite  = "write"
	ActManage = "manage"
)

type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer loads the embedded policy, or the CSV at policyPath when set.
func NewEnforcer(policyPath string) (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	var e *casbin.SyncedEnforcer
	if policyPath != "" {
		if _, statErr := os.Stat(policyPath); statErr != nil {
			return nil, fmt.Errorf("policy file: %w", statErr)
		}
		e, err = casbin.NewSyncedEnforcer(m, fileadapter.NewAdapter(policyPath))
	} else {
		e, err = casbin.NewSyncedEnforcer(m, stringadapter.NewAdapter(embeddedPolicy))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	return &Enforcer{enforcer: e}, nil
}

func (e *Enforcer) Allowed(role, obj, act string) (bool, error) {
	ok, err := e.enforcer.Enforce(role, obj, act)
	if err != nil {
		return false, fmt.Errorf("enforce %s %s %s: %w", role, obj, act, err)
	}
	return ok, nil
}

// Require returns middleware that answers 403 unless the session role may
// perform act on obj. It must run after auth.RequireAuth.
func (e *Enforcer) Require(obj, act string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.UserFromContext(r.Context())
			if id == nil {
				httputil.Error(w, r, apperr.Unauthenticated("Authentication required"))
				return
			}
			ok, err := e.Allowed(string(id.Role), obj, act)
			if err != nil {
				httputil.Error(w, r, apperr.Unexpected(err))
				return
			}
			if !ok {
				httputil.Error(w, r, apperr.Forbidden("Forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
