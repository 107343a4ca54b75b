package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// StoryUpdates reports when an external story last changed.
type StoryUpdates interface {
	LastUpdated(ctx context.Context, storyID string) (time.Time, error)
}

// StoryFeed 通过故事的 RSS 订阅源查询最近更新时间
type StoryFeed struct {
	parser      *gofeed.Parser
	urlTemplate string
}

// NewStoryFeed 创建查询服务，urlTemplate 中的 %s 会被替换为故事 ID
func NewStoryFeed(urlTemplate string) *StoryFeed {
	// 创建自定义 HTTP 客户端，设置超时
	httpClient := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConnsPerHost: 2,
		},
	}

	parser := gofeed.NewParser()
	parser.Client = httpClient

	return &StoryFeed{
		parser:      parser,
		urlTemplate: urlTemplate,
	}
}

func (f *StoryFeed) feedURL(storyID string) string {
	if strings.Contains(f.urlTemplate, "%s") {
		return fmt.Sprintf(f.urlTemplate, storyID)
	}
	return strings.TrimSuffix(f.urlTemplate, "/") + "/" + storyID
}

// LastUpdated 返回订阅源的更新时间；订阅源本身没有时取最新条目的发布时间
func (f *StoryFeed) LastUpdated(ctx context.Context, storyID string) (time.Time, error) {
	if storyID == "" {
		return time.Time{}, fmt.Errorf("story id is empty")
	}

	feed, err := f.parser.ParseURLWithContext(f.feedURL(storyID), ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse story feed %s: %w", storyID, err)
	}

	if feed.UpdatedParsed != nil {
		return *feed.UpdatedParsed, nil
	}

	var latest time.Time
	for _, item := range feed.Items {
		t := item.PublishedParsed
		if t == nil {
			t = item.UpdatedParsed
		}
		if t != nil && t.After(latest) {
			latest = *t
		}
	}
	if latest.IsZero() {
		return time.Time{}, fmt.Errorf("story feed %s has no dates", storyID)
	}
	return latest, nil
}
