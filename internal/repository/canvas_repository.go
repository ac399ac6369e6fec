package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/peach-brawl/internal/dto"
	appErrors "github.com/noah-isme/peach-brawl/pkg/errors"
)

const canvasPageSize = 100

// CanvasRepository reads courses and assignments from the Canvas LMS REST API.
type CanvasRepository struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

// NewCanvasRepository constructs a Canvas client. baseURL is the institution root, e.g.
// https://school.instructure.com.
func NewCanvasRepository(baseURL, token string, timeout time.Duration, logger *zap.Logger) *CanvasRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CanvasRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// CurrentUser returns the profile owning the token; used to check credentials.
func (r *CanvasRepository) CurrentUser(ctx context.Context) (*dto.CanvasUser, error) {
	var user dto.CanvasUser
	if _, err := r.getJSON(ctx, r.baseURL+"/api/v1/users/self", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListCourses returns every course visible to the token, following pagination.
func (r *CanvasRepository) ListCourses(ctx context.Context) ([]dto.CanvasCourse, error) {
	query := url.Values{}
	query.Set("per_page", fmt.Sprint(canvasPageSize))
	query.Add("include[]", "term")

	var courses []dto.CanvasCourse
	next := r.baseURL + "/api/v1/courses?" + query.Encode()
	for next != "" {
		var page []dto.CanvasCourse
		link, err := r.getJSON(ctx, next, &page)
		if err != nil {
			return nil, err
		}
		courses = append(courses, page...)
		next = link
	}
	return courses, nil
}

// ListAssignments returns the assignments of one course, following pagination.
func (r *CanvasRepository) ListAssignments(ctx context.Context, courseID int64) ([]dto.CanvasAssignment, error) {
	query := url.Values{}
	query.Set("per_page", fmt.Sprint(canvasPageSize))

	var assignments []dto.CanvasAssignment
	next := fmt.Sprintf("%s/api/v1/courses/%d/assignments?%s", r.baseURL, courseID, query.Encode())
	for next != "" {
		var page []dto.CanvasAssignment
		link, err := r.getJSON(ctx, next, &page)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, page...)
		next = link
	}
	return assignments, nil
}

// getJSON decodes one page into dest and returns the rel="next" URL, if any.
func (r *CanvasRepository) getJSON(ctx context.Context, target string, dest interface{}) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("build canvas request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrCanvasUnavailable.Code, appErrors.ErrCanvasUnavailable.Status, appErrors.ErrCanvasUnavailable.Message)
	}
	defer resp.Body.Close() //nolint:errcheck

	r.logger.Debug("canvas request", zap.String("url", req.URL.Path), zap.Int("status", resp.StatusCode), zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", appErrors.Wrap(fmt.Errorf("GET %s: %s", req.URL.Path, resp.Status), appErrors.ErrCanvasUnavailable.Code, appErrors.ErrCanvasUnavailable.Status, appErrors.ErrCanvasUnavailable.Message)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return "", appErrors.Wrap(fmt.Errorf("decode %s: %w", req.URL.Path, err), appErrors.ErrCanvasUnavailable.Code, appErrors.ErrCanvasUnavailable.Status, appErrors.ErrCanvasUnavailable.Message)
	}
	return followLink(req.URL, nextLink(resp.Header.Get("Link")))
}

// followLink resolves a pagination link against the page that returned it. Links to another
// scheme or host are refused so the bearer token never leaves the Canvas origin.
func followLink(current *url.URL, link string) (string, error) {
	if link == "" {
		return "", nil
	}
	target, err := current.Parse(link)
	if err != nil {
		return "", appErrors.Wrap(fmt.Errorf("parse next link: %w", err), appErrors.ErrCanvasUnavailable.Code, appErrors.ErrCanvasUnavailable.Status, appErrors.ErrCanvasUnavailable.Message)
	}
	if !strings.EqualFold(target.Scheme, current.Scheme) || !strings.EqualFold(target.Host, current.Host) {
		return "", appErrors.Wrap(fmt.Errorf("next link %s leaves %s://%s", target.Redacted(), current.Scheme, current.Host), appErrors.ErrCanvasUnavailable.Code, appErrors.ErrCanvasUnavailable.Status, appErrors.ErrCanvasUnavailable.Message)
	}
	return target.String(), nil
}

// nextLink extracts the rel="next" target from an RFC 8288 Link header.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		target := strings.TrimSpace(segments[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, param := range segments[1:] {
			param = strings.TrimSpace(param)
			if param == `rel="next"` || param == "rel=next" {
				return strings.Trim(target, "<>")
			}
		}
	}
	return ""
}
