package models

import "time"

// ACL is the access record of one relay object. Owner and Members are short
// identity descriptors.
type ACL struct {
	ObjectKey string
	Owner     string
	Members   []string
	CreatedAt time.Time
}

// Allows reports whether identity may download the object.
func (a *ACL) Allows(identity string) bool {
	if a.Owner == identity {
		return true
	}
	for _, m := range a.Members {
		if m == identity {
			return true
		}
	}
	return false
}
