package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/kanvaslabs/kanvas/internal/domain"
	"github.com/kanvaslabs/kanvas/internal/tasks"
)

type CreateTaskInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Title       string              `json:"title" minLength:"1" maxLength:"500" doc:"Task title"`
		Description string              `json:"description,omitempty" doc:"Task description"`
		AssigneeID  uuid.UUID           `json:"assigneeId,omitempty" doc:"Assigned user ID"`
		Priority    domain.TaskPriority `json:"priority" enum:"low,medium,high" doc:"Task priority"`
		DueDate     string              `json:"dueDate,omitempty" doc:"Due date (ISO 8601)"`
		Status      domain.TaskStatus   `json:"status" enum:"icebox,backlog,ongoing,review,done" doc:"Board column"`
	}
}

type CreateTaskOutput struct {
	Body *domain.Task
}

type ListTasksInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

type ListTasksOutput struct {
	Body []*domain.Task
}

type UpdateTaskInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	TaskID  uuid.UUID `path:"taskID" doc:"Task ID"`
	Body    struct {
		Title       *string              `json:"title,omitempty" maxLength:"500" doc:"Task title"`
		Description *string              `json:"description,omitempty" doc:"Task description"`
		AssigneeID  *uuid.UUID           `json:"assigneeId,omitempty" doc:"Assigned user ID"`
		Priority    *domain.TaskPriority `json:"priority,omitempty" enum:"low,medium,high" doc:"Task priority"`
		DueDate     *string              `json:"dueDate,omitempty" doc:"Due date (ISO 8601)"`
		Status      *domain.TaskStatus   `json:"status,omitempty" enum:"icebox,backlog,ongoing,review,done" doc:"Board column"`
	}
}

type UpdateTaskOutput struct {
	Body *tasks.PatchResult
}

type DeleteTaskInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	TaskID  uuid.UUID `path:"taskID" doc:"Task ID"`
}

type ReorderTasksInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		OrderedTaskIDs []uuid.UUID `json:"orderedTaskIds" minItems:"1" doc:"Task IDs in their new order"`
	}
}

type AttachInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	TaskID  uuid.UUID `path:"taskID" doc:"Task ID"`
	Body    struct {
		Type domain.AttachmentType `json:"type" enum:"pull_request,commit,issue" doc:"Attachment type"`
		Ref  string                `json:"ref" minLength:"1" doc:"Issue/PR number or commit hash"`
	}
}

type AttachOutput struct {
	Body *domain.Attachment
}

type ListAttachmentsInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	TaskID  uuid.UUID `path:"taskID" doc:"Task ID"`
}

type ListAttachmentsOutput struct {
	Body []*domain.Attachment
}

type RemoveAttachmentInput struct {
	BoardID      uuid.UUID `path:"boardID" doc:"Board ID"`
	TaskID       uuid.UUID `path:"taskID" doc:"Task ID"`
	AttachmentID uuid.UUID `path:"attachmentID" doc:"Attachment ID"`
}

func RegisterTaskRoutes(api huma.API, store DataStore, svc TaskService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-task",
		Method:      http.MethodPost,
		Path:        "/boards/{boardID}/tasks",
		Summary:     "Create a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		if _, err := requireMember(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		t, err := svc.Create(ctx, input.BoardID, tasks.CreateTaskParams{
			Title:       input.Body.Title,
			Description: input.Body.Description,
			AssigneeID:  input.Body.AssigneeID,
			Priority:    input.Body.Priority,
			DueDate:     input.Body.DueDate,
			Status:      input.Body.Status,
		})
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to create task", err)
		}

		return &CreateTaskOutput{Body: t}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/tasks",
		Summary:     "List a board's tasks ordered by rank",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ListTasksInput) (*ListTasksOutput, error) {
		if _, err := requireMember(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		list, err := svc.List(ctx, input.BoardID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tasks", err)
		}

		return &ListTasksOutput{Body: list}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPatch,
		Path:        "/boards/{boardID}/tasks/{taskID}",
		Summary:     "Partially update a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*UpdateTaskOutput, error) {
		if _, err := requireMember(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		patch := domain.TaskPatch{
			Title:       input.Body.Title,
			Description: input.Body.Description,
			AssigneeID:  input.Body.AssigneeID,
			Priority:    input.Body.Priority,
			DueDate:     input.Body.DueDate,
			Status:      input.Body.Status,
		}

		result, err := svc.Update(ctx, input.BoardID, input.TaskID, patch)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to update task", err)
		}
		if result == nil {
			// Empty change-set: nothing was written or broadcast.
			result = &tasks.PatchResult{ID: input.TaskID}
		}

		return &UpdateTaskOutput{Body: result}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/boards/{boardID}/tasks/{taskID}",
		Summary:     "Delete a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *DeleteTaskInput) (*struct{}, error) {
		if _, err := requireMember(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		if err := svc.Delete(ctx, input.BoardID, input.TaskID); err != nil {
			return nil, huma.Error500InternalServerError("failed to delete task", err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reorder-tasks",
		Method:      http.MethodPost,
		Path:        "/boards/{boardID}/tasks/reorder",
		Summary:     "Reassign ranks from an ordered id list",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ReorderTasksInput) (*struct{}, error) {
		if _, err := requireMember(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		if err := svc.Reorder(ctx, input.BoardID, input.Body.OrderedTaskIDs); err != nil {
			return nil, huma.Error500InternalServerError("failed to reorder tasks", err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "attach-github-ref",
		Method:      http.MethodPost,
		Path:        "/boards/{boardID}/tasks/{taskID}/github-attach",
		Summary:     "Attach a repository artifact to a task",
		Tags:        []string{"Attachments"},
	}, func(ctx context.Context, input *AttachInput) (*AttachOutput, error) {
		if _, err := requireMember(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		a, err := svc.AddAttachment(ctx, input.BoardID, input.TaskID, input.Body.Type, input.Body.Ref)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to attach", err)
		}

		return &AttachOutput{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-github-attachments",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/tasks/{taskID}/github-attachments",
		Summary:     "List a task's attachments",
		Tags:        []string{"Attachments"},
	}, func(ctx context.Context, input *ListAttachmentsInput) (*ListAttachmentsOutput, error) {
		if _, err := requireMember(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		list, err := svc.ListAttachments(ctx, input.BoardID, input.TaskID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("task not found")
			}
			return nil, huma.Error500InternalServerError("failed to list attachments", err)
		}

		return &ListAttachmentsOutput{Body: list}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-github-attachment",
		Method:      http.MethodDelete,
		Path:        "/boards/{boardID}/tasks/{taskID}/github-attachments/{attachmentID}",
		Summary:     "Remove an attachment from a task",
		Tags:        []string{"Attachments"},
	}, func(ctx context.Context, input *RemoveAttachmentInput) (*struct{}, error) {
		if _, err := requireMember(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		if err := svc.RemoveAttachment(ctx, input.TaskID, input.AttachmentID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("attachment not found")
			}
			return nil, huma.Error500InternalServerError("failed to remove attachment", err)
		}

		return nil, nil
	})
}
