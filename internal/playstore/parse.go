package playstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const rpcUserReviews = "UserReviews"

// envelopePrefix is the anti-hijacking prefix batchexecute prepends to every
// response body.
const envelopePrefix = ")]}'"

// buildUserReviewsRequest encodes the f.req form value for one page request.
// The inner request is itself a JSON string inside the RPC envelope:
// [null,null,[2,<sort>,[<count>,null,<token>]],["<appId>",7]].
func buildUserReviewsRequest(appID string, pageSize int, token string) string {
	tok := "null"
	if token != "" {
		tok = strconv.Quote(token)
	}
	inner := fmt.Sprintf(`[null,null,[2,%d,[%d,null,%s]],[%q,7]]`, sortNewest, pageSize, tok, appID)
	return fmt.Sprintf(`[[[%q,%s,null,"generic"]]]`, rpcUserReviews, strconv.Quote(inner))
}

// parsePage decodes a raw batchexecute response body into a Page.
func parsePage(raw []byte) (*Page, error) {
	payload, err := extractPayload(raw)
	if err != nil {
		return nil, err
	}
	if payload == "" {
		// RPC succeeded but returned no data; treat as an exhausted stream.
		return &Page{}, nil
	}

	var body []any
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		return nil, fmt.Errorf("decoding reviews payload: %w", err)
	}
	if len(body) == 0 {
		return &Page{}, nil
	}

	page := &Page{}
	if items, ok := body[0].([]any); ok {
		page.Reviews = make([]Review, 0, len(items))
		for _, it := range items {
			item, ok := it.([]any)
			if !ok {
				continue
			}
			if r, ok := parseReview(item); ok {
				page.Reviews = append(page.Reviews, r)
			}
		}
	}
	page.NextToken = extractToken(body)
	return page, nil
}

// extractPayload strips the envelope prefix, decodes the outer frame and
// returns the UserReviews payload string.
func extractPayload(raw []byte) (string, error) {
	body := bytes.TrimSpace(raw)
	body = bytes.TrimPrefix(body, []byte(envelopePrefix))
	body = bytes.TrimSpace(body)

	// The frame may carry a byte-count line between chunks; skip to the
	// first JSON array.
	if idx := bytes.IndexByte(body, '['); idx > 0 {
		body = body[idx:]
	}

	var frame []any
	if err := json.Unmarshal(body, &frame); err != nil {
		return "", fmt.Errorf("decoding response frame: %w", err)
	}

	for _, el := range frame {
		chunk, ok := el.([]any)
		if !ok || len(chunk) < 3 {
			continue
		}
		if str(chunk[0]) != "wrb.fr" || str(chunk[1]) != rpcUserReviews {
			continue
		}
		if chunk[2] == nil {
			return "", nil
		}
		return str(chunk[2]), nil
	}
	return "", fmt.Errorf("no %s chunk in response", rpcUserReviews)
}

// parseReview maps one raw review array onto a Review. Field positions
// follow the UserReviews response layout: id at 0, score at 2, text at 4,
// epoch seconds at 5[0].
func parseReview(item []any) (Review, bool) {
	if len(item) < 6 {
		return Review{}, false
	}

	r := Review{
		ID:   str(item[0]),
		Text: str(item[4]),
	}
	if r.ID == "" {
		return Review{}, false
	}
	if score, ok := num(item[2]); ok {
		r.Rating = int(score)
	}
	if at, ok := item[5].([]any); ok && len(at) > 0 {
		if sec, ok := num(at[0]); ok {
			r.At = time.Unix(int64(sec), 0).UTC()
		}
	}
	if r.At.IsZero() {
		return Review{}, false
	}
	return r, true
}

// extractToken pulls the continuation token from the payload tail:
// the last element is [null,"<token>"] while more pages remain.
func extractToken(body []any) string {
	tail, ok := body[len(body)-1].([]any)
	if !ok || len(tail) == 0 {
		return ""
	}
	return strings.TrimSpace(str(tail[len(tail)-1]))
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
