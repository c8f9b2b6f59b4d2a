package sellsy

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Signer builds the authentication form for the Sellsy v1 API.
//
// Sellsy only accepts the PLAINTEXT scheme: the signature is the two secrets
// joined by "&", so it is not a real signature. It is kept as-is for wire
// compatibility.
type Signer struct {
	consumerKey    string
	consumerSecret string
	userToken      string
	userSecret     string

	now func() time.Time

	mu        sync.Mutex
	lastNonce int64
}

func NewSigner(consumerKey, consumerSecret, userToken, userSecret string) *Signer {
	return &Signer{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		userToken:      userToken,
		userSecret:     userSecret,
		now:            time.Now,
	}
}

type envelope struct {
	Method string `json:"method"`
	Params any    `json:"params"`
}

// Sign returns the form-encoded body for one call. The same value is sent as
// oauth_nonce and oauth_timestamp.
func (s *Signer) Sign(method string, params any) (url.Values, error) {
	doIn, err := json.Marshal(envelope{Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("erro ao marshal request sellsy %s: %w", method, err)
	}

	nonce := strconv.FormatInt(s.nextNonce(), 10)

	form := url.Values{}
	form.Set("oauth_consumer_key", s.consumerKey)
	form.Set("oauth_token", s.userToken)
	form.Set("oauth_nonce", nonce)
	form.Set("oauth_timestamp", nonce)
	form.Set("oauth_signature_method", "PLAINTEXT")
	form.Set("oauth_version", "1.0")
	form.Set("oauth_signature", s.consumerSecret+"&"+s.userSecret)
	form.Set("io_mode", "json")
	form.Set("do_in", string(doIn))
	return form, nil
}

// nextNonce is the wall clock in milliseconds, bumped by one whenever the
// clock has not moved past the previous nonce.
func (s *Signer) nextNonce() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.now().UnixMilli()
	if n <= s.lastNonce {
		n = s.lastNonce + 1
	}
	s.lastNonce = n
	return n
}
