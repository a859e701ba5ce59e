package comment

import (
	"github.com/google/uuid"

	"github.com/pulseboard/backend/internal/entity"
	commentDto "github.com/pulseboard/backend/internal/modules/comment/dto"
	userDto "github.com/pulseboard/backend/internal/modules/user/dto"
)

// buildTree assembles the reply forest from the flat, creation-ordered comment
// list. Two passes over the input slice: arena first, then attachment. Child
// lists inherit the input's relative order, and map lookups never drive
// iteration, so output is identical across runs.
//
// A comment whose parent is absent from the input (possible on a corrupted or
// partial read) is promoted to a root rather than dropped.
func buildTree(comments []*entity.Comment, liked map[uuid.UUID]bool) []*commentDto.CommentNode {
	arena := make(map[uuid.UUID]*commentDto.CommentNode, len(comments))
	for _, c := range comments {
		arena[c.ID] = &commentDto.CommentNode{
			ID:        c.ID,
			Author:    userDto.NewUserResponse(&c.User),
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
			Parent:    c.ParentID,
			LikeCount: c.LikeCount,
			IsLiked:   liked[c.ID],
			Replies:   []*commentDto.CommentNode{},
		}
	}

	roots := []*commentDto.CommentNode{}
	for _, c := range comments {
		node := arena[c.ID]
		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := arena[*c.ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}

	return roots
}
