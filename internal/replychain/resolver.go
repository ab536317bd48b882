// Package replychain rebuilds comment threads from a flat, unordered
// collection of comments linked only by InReplyToID.
package replychain

import "repo-autobot/internal/model"

// Resolve returns the chain of comments ending at startID, oldest first.
//
// The walk stops at a root, at a parent missing from comments, or at the
// first repeated id. A startID absent from comments yields an empty chain.
// Duplicate ids in comments keep the first occurrence.
func Resolve(comments []model.Comment, startID int64) model.ReplyChain {
	index := make(map[int64]model.Comment, len(comments))
	for _, c := range comments {
		if _, ok := index[c.ID]; !ok {
			index[c.ID] = c
		}
	}

	current, ok := index[startID]
	if !ok {
		return model.ReplyChain{}
	}

	visited := make(map[int64]struct{})
	var acc model.ReplyChain
	for {
		if _, seen := visited[current.ID]; seen {
			break
		}
		visited[current.ID] = struct{}{}
		acc = append(acc, current)

		if current.InReplyToID == nil {
			break
		}
		parent, ok := index[*current.InReplyToID]
		if !ok {
			break
		}
		current = parent
	}

	for i, j := 0, len(acc)-1; i < j; i, j = i+1, j-1 {
		acc[i], acc[j] = acc[j], acc[i]
	}
	return acc
}

// Broken reports whether the chain does not start at a root comment, meaning
// the walk stopped at a missing parent or a cycle.
func Broken(chain model.ReplyChain) bool {
	return len(chain) > 0 && chain[0].InReplyToID != nil
}

// Transcript renders a chain as "author: body" lines for prompts.
func Transcript(chain model.ReplyChain) []string {
	lines := make([]string, 0, len(chain))
	for _, c := range chain {
		lines = append(lines, c.AuthorLogin+": "+c.Body)
	}
	return lines
}
