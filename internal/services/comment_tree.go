package services

import (
	"time"

	"readshelf/internal/models"
	"readshelf/internal/utils"
)

// CommentNode is one comment in the reply tree returned to clients.
type CommentNode struct {
	ID        uint           `json:"id"`
	BookID    uint           `json:"book_id"`
	Username  string         `json:"username"`
	ParentID  *uint          `json:"parent_id"`
	Text      string         `json:"text"`
	HTML      string         `json:"html,omitempty"`
	Timestamp string         `json:"timestamp"`
	Edited    bool           `json:"edited"`
	Upvotes   int            `json:"upvotes"`
	Downvotes int            `json:"downvotes"`
	Deleted   bool           `json:"deleted"`
	Replies   []*CommentNode `json:"replies"`
}

// BuildCommentTree nests a book's comments under their parents.
//
// comments must be ordered by created_at ascending; sibling order in the
// result follows input order. Deleted comments are dropped. A comment whose
// parent is missing (or deleted) is returned as a root, and so is any
// comment whose ancestor chain leads back to itself.
func BuildCommentTree(comments []models.Comment) []*CommentNode {
	nodes := make(map[uint]*CommentNode, len(comments))
	order := make([]*CommentNode, 0, len(comments))

	for _, c := range comments {
		if c.Deleted {
			continue
		}
		if _, dup := nodes[c.ID]; dup {
			continue
		}
		n := &CommentNode{
			ID:        c.ID,
			BookID:    c.BookID,
			Username:  c.User.Username,
			ParentID:  c.ParentID,
			Text:      c.Text,
			Timestamp: c.CreatedAt.UTC().Format(time.RFC3339),
			Edited:    c.Edited,
			Upvotes:   c.Upvotes,
			Downvotes: c.Downvotes,
			Deleted:   c.Deleted,
			Replies:   []*CommentNode{},
		}
		nodes[c.ID] = n
		order = append(order, n)
	}

	roots := []*CommentNode{}
	for _, n := range order {
		parent, ok := lookupParent(nodes, n)
		if !ok || inCycle(nodes, n) {
			roots = append(roots, n)
			continue
		}
		parent.Replies = append(parent.Replies, n)
	}
	return roots
}

func lookupParent(nodes map[uint]*CommentNode, n *CommentNode) (*CommentNode, bool) {
	if n.ParentID == nil {
		return nil, false
	}
	p, ok := nodes[*n.ParentID]
	return p, ok
}

// inCycle follows parent links from n and reports whether they return to n.
// The walk stops at the first node seen twice.
func inCycle(nodes map[uint]*CommentNode, n *CommentNode) bool {
	seen := map[uint]bool{}
	cur, ok := lookupParent(nodes, n)
	for ok {
		if cur.ID == n.ID {
			return true
		}
		if seen[cur.ID] {
			return false
		}
		seen[cur.ID] = true
		cur, ok = lookupParent(nodes, cur)
	}
	return false
}

// RenderCommentHTML fills HTML for every node in the tree.
func RenderCommentHTML(roots []*CommentNode) {
	for _, n := range roots {
		n.HTML = utils.RenderMarkdown(n.Text)
		RenderCommentHTML(n.Replies)
	}
}

// CountNodes returns the number of nodes in the tree, replies included.
func CountNodes(roots []*CommentNode) int {
	total := 0
	for _, n := range roots {
		total += 1 + CountNodes(n.Replies)
	}
	return total
}
