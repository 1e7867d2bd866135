package model

import "time"

// DefaultReferralSessionTTL is how long a captured referral code stays active.
const DefaultReferralSessionTTL = 30 * 24 * time.Hour

// ReferralSession is the durable client-held capture of an inbound referral
// code. It is a plain value, independent of any user identity: the handler
// round-trips it through a browser cookie and passes it explicitly to the
// pricing engine. Expiry is evaluated lazily on read; nothing sweeps it.
type ReferralSession struct {
	Code       string    `json:"code"`
	Source     string    `json:"source,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Capture applies the overwrite-on-new-arrival policy: a freshly arriving
// code always wins, whether the stored one is absent, expired, or still
// valid. Re-capturing the code that is already active is not a new arrival
// and keeps the original expiry.
func (s ReferralSession) Capture(code, source string, now time.Time, ttl time.Duration) ReferralSession {
	if code == "" {
		return s
	}
	if active, ok := s.ActiveCode(now); ok && active == code {
		return s
	}
	return ReferralSession{
		Code:       code,
		Source:     source,
		CapturedAt: now,
		ExpiresAt:  now.Add(ttl),
	}
}

// ActiveCode returns the captured code if the session has not expired.
func (s ReferralSession) ActiveCode(now time.Time) (string, bool) {
	if s.Code == "" {
		return "", false
	}
	if !now.Before(s.ExpiresAt) {
		return "", false
	}
	return s.Code, true
}
