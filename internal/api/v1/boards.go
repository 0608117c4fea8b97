package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/kanvaslabs/kanvas/internal/domain"
	"github.com/kanvaslabs/kanvas/internal/server/middleware"
)

type CreateBoardInput struct {
	Body struct {
		Name        string `json:"name" minLength:"1" maxLength:"200" doc:"Board name"`
		Description string `json:"description,omitempty" doc:"Board description"`
	}
}

type CreateBoardOutput struct {
	Body *domain.Board
}

type ListBoardsOutput struct {
	Body []*domain.Board
}

type GetBoardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

type GetBoardOutput struct {
	Body *domain.Board
}

type JoinBoardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

type LinkRepoInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Owner string `json:"owner" minLength:"1" doc:"Repository owner"`
		Repo  string `json:"repo" minLength:"1" doc:"Repository name"`
	}
}

type DeleteBoardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

func RegisterBoardRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "create-board",
		Method:      http.MethodPost,
		Path:        "/boards",
		Summary:     "Create a board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *CreateBoardInput) (*CreateBoardOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		b, err := domain.NewBoard(input.Body.Name, input.Body.Description, userID)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		if err := store.Boards().Create(ctx, b); err != nil {
			return nil, huma.Error500InternalServerError("failed to create board", err)
		}

		return &CreateBoardOutput{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-boards",
		Method:      http.MethodGet,
		Path:        "/boards",
		Summary:     "List boards the caller is a member of",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, _ *struct{}) (*ListBoardsOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		boards, err := store.Boards().ListByMember(ctx, userID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list boards", err)
		}

		return &ListBoardsOutput{Body: boards}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}",
		Summary:     "Get a board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *GetBoardInput) (*GetBoardOutput, error) {
		b, err := requireMember(ctx, store, input.BoardID)
		if err != nil {
			return nil, err
		}

		return &GetBoardOutput{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "join-board",
		Method:      http.MethodPost,
		Path:        "/boards/{boardID}/join",
		Summary:     "Join a board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *JoinBoardInput) (*struct{}, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		if err := store.Boards().AddMember(ctx, input.BoardID, userID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("board not found")
			}
			return nil, huma.Error500InternalServerError("failed to join board", err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "link-board-repo",
		Method:      http.MethodPost,
		Path:        "/boards/{boardID}/link-repo",
		Summary:     "Link an external repository to a board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *LinkRepoInput) (*struct{}, error) {
		if _, err := requireMember(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		ref := domain.RepoRef{Owner: input.Body.Owner, Repo: input.Body.Repo}
		if err := store.Boards().LinkRepo(ctx, input.BoardID, ref); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("board not found")
			}
			return nil, huma.Error500InternalServerError("failed to link repository", err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-board",
		Method:      http.MethodDelete,
		Path:        "/boards/{boardID}",
		Summary:     "Delete a board and all its tasks",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *DeleteBoardInput) (*struct{}, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		b, err := store.Boards().GetByID(ctx, input.BoardID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("board not found")
			}
			return nil, huma.Error500InternalServerError("failed to get board", err)
		}
		if b.OwnerID != userID {
			return nil, huma.Error403Forbidden("only the board owner can delete it")
		}

		if err := store.Boards().Delete(ctx, input.BoardID); err != nil {
			return nil, huma.Error500InternalServerError("failed to delete board", err)
		}

		return nil, nil
	})
}

// requireMember loads the board and checks the caller's membership.
func requireMember(ctx context.Context, store DataStore, boardID uuid.UUID) (*domain.Board, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return nil, huma.Error403Forbidden("missing user context")
	}

	b, err := store.Boards().GetByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, huma.Error404NotFound("board not found")
		}
		return nil, huma.Error500InternalServerError("failed to get board", err)
	}
	if !b.HasMember(userID) {
		return nil, huma.Error403Forbidden("not a member of this board")
	}

	return b, nil
}
