package access

import (
	"strings"

	"partsbot/internal"
	"partsbot/internal/util"
)

// Sets is the parsed users sheet.
type Sets struct {
	Allowed map[int64]struct{}
	Admins  map[int64]struct{}
	Blocked map[int64]struct{}
}

func newSets() Sets {
	return Sets{
		Allowed: map[int64]struct{}{},
		Admins:  map[int64]struct{}{},
		Blocked: map[int64]struct{}{},
	}
}

// ParseUsers reads a users grid whose first row is the header. The id comes
// from user_id, uid or id. A role column wins over the boolean blocked, admin
// and allowed columns; a row with none of them just allows the user.
func ParseUsers(values [][]string) Sets {
	sets := newSets()
	if len(values) == 0 {
		return sets
	}

	headers := util.DedupeHeaders(values[0])
	has := map[string]bool{}
	for _, h := range headers {
		has[h] = true
	}

	for _, row := range values[1:] {
		rec := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = strings.TrimSpace(row[i])
			}
		}

		uid, ok := firstID(rec, "user_id", "uid", "id")
		if !ok {
			continue
		}

		if has["role"] {
			switch strings.ToLower(rec["role"]) {
			case "admin", "админ":
				sets.Admins[uid] = struct{}{}
				sets.Allowed[uid] = struct{}{}
			case "blocked", "ban", "заблокирован":
				sets.Blocked[uid] = struct{}{}
			default:
				sets.Allowed[uid] = struct{}{}
			}
			continue
		}

		switch {
		case has["blocked"] && util.Truthy(rec["blocked"]):
			sets.Blocked[uid] = struct{}{}
		case has["admin"] && util.Truthy(rec["admin"]):
			sets.Admins[uid] = struct{}{}
			sets.Allowed[uid] = struct{}{}
		default:
			sets.Allowed[uid] = struct{}{}
		}
	}
	return sets
}

func firstID(rec map[string]string, keys ...string) (int64, bool) {
	for _, k := range keys {
		if v := rec[k]; v != "" {
			return util.ParseUserID(v)
		}
	}
	return 0, false
}

// Rows flattens the sets for storage, one row per user. Blocked beats admin,
// admin beats a plain user.
func (s Sets) Rows() []internal.UserRow {
	roles := map[int64]internal.Role{}
	for uid := range s.Allowed {
		roles[uid] = internal.RoleUser
	}
	for uid := range s.Admins {
		roles[uid] = internal.RoleAdmin
	}
	for uid := range s.Blocked {
		roles[uid] = internal.RoleBlocked
	}
	out := make([]internal.UserRow, 0, len(roles))
	for uid, role := range roles {
		out = append(out, internal.UserRow{UserID: uid, Role: role})
	}
	return out
}

func SetsFromRows(rows []internal.UserRow) Sets {
	sets := newSets()
	for _, r := range rows {
		switch r.Role {
		case internal.RoleAdmin:
			sets.Admins[r.UserID] = struct{}{}
			sets.Allowed[r.UserID] = struct{}{}
		case internal.RoleBlocked:
			sets.Blocked[r.UserID] = struct{}{}
		default:
			sets.Allowed[r.UserID] = struct{}{}
		}
	}
	return sets
}
