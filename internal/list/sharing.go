package list

import "time"

// ShareRequest grants permission on a list to one user.
type ShareRequest struct {
	UserID     string     `json:"userId"`
	Permission Permission `json:"permission"`
}

// ShareFor returns the share entry of userID, if any.
func (l *List) ShareFor(userID string) (ShareEntry, bool) {
	for _, s := range l.SharedWith {
		if s.UserID == userID {
			return s, true
		}
	}
	return ShareEntry{}, false
}

func (l *List) IsMember(userID string) bool {
	if userID == l.OwnerID {
		return true
	}
	_, ok := l.ShareFor(userID)
	return ok
}

// ShareResult describes what ApplyShares did.
type ShareResult struct {
	List      *List
	Processed []ShareRequest
	Added     []string
}

// ApplyShares merges requests into a copy of l. The owner is skipped, an
// existing entry has its permission overwritten, anything else is inserted
// with joinedAt=now. A user id never appears twice in the result.
func ApplyShares(l *List, requests []ShareRequest, now time.Time) ShareResult {
	next := l.Clone()
	res := ShareResult{List: next}
	addedSet := make(map[string]bool)

	for _, req := range requests {
		if req.UserID == "" || req.UserID == next.OwnerID {
			continue
		}
		res.Processed = append(res.Processed, req)

		idx := -1
		for i, s := range next.SharedWith {
			if s.UserID == req.UserID {
				idx = i
				break
			}
		}
		if idx >= 0 {
			next.SharedWith[idx].Permission = req.Permission
			continue
		}
		next.SharedWith = append(next.SharedWith, ShareEntry{
			UserID:     req.UserID,
			Permission: req.Permission,
			JoinedAt:   now,
		})
		if !addedSet[req.UserID] {
			addedSet[req.UserID] = true
			res.Added = append(res.Added, req.UserID)
		}
	}
	return res
}

// RemoveShare returns a copy of l without userID's entry and whether one existed.
func RemoveShare(l *List, userID string) (*List, bool) {
	next := l.Clone()
	kept := next.SharedWith[:0]
	removed := false
	for _, s := range next.SharedWith {
		if s.UserID == userID {
			removed = true
			continue
		}
		kept = append(kept, s)
	}
	next.SharedWith = kept
	return next, removed
}

// RegisterCategory appends code to categoriesUsed unless present. The second
// return value is false when nothing changed.
func RegisterCategory(l *List, code string) (*List, bool) {
	if code == "" {
		return l, false
	}
	for _, c := range l.CategoriesUsed {
		if c == code {
			return l, false
		}
	}
	next := l.Clone()
	next.CategoriesUsed = append(next.CategoriesUsed, code)
	return next, true
}
