// Package tokens counts model tokens with the provider's own BPE encoding,
// so evidence budgets and response limits line up with what the completion
// endpoint will actually bill and truncate on.
package tokens

import (
	"fmt"
	"strconv"

	"github.com/pkoukk/tiktoken-go"

	"github.com/kirillkom/docs-qa-agent/internal/core/domain"
)

type Counter struct {
	encoding *tiktoken.Tiktoken
}

// NewCounterForModel resolves the encoding registered for the given model
// name. The encoding tables are fetched on first use and cached by the
// library, so construction happens once at bootstrap, not per request.
func NewCounterForModel(model string) (*Counter, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "resolve token encoding", err)
	}
	return &Counter{encoding: encoding}, nil
}

func NewCounter(encodingName string) (*Counter, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "load token encoding", err)
	}
	return &Counter{encoding: encoding}, nil
}

func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.encoding.Encode(text, nil, nil))
}

// ChoiceTokenIDs returns the token id of each integer literal "0".."n",
// for building a logit bias map that pins a completion to exactly one of
// those literals. Every literal must encode to a single token; multi-token
// literals cannot be forced through a one-token completion.
func (c *Counter) ChoiceTokenIDs(n int) ([]int, error) {
	if n < 0 {
		return nil, fmt.Errorf("choice count must be non-negative, got %d", n)
	}
	ids := make([]int, 0, n+1)
	for i := 0; i <= n; i++ {
		literal := strconv.Itoa(i)
		encoded := c.encoding.Encode(literal, nil, nil)
		if len(encoded) != 1 {
			return nil, fmt.Errorf("integer literal %q does not encode to a single token", literal)
		}
		ids = append(ids, encoded[0])
	}
	return ids, nil
}
