package store

import (
	"context"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/kisanmate-backend/internal/errs"
)

// Secret names look like projects/{project}/secrets/{id}; a version suffix
// is optional and defaults to latest.

type secretStore struct {
	client *secretmanager.Client
}

func NewSecretStore(client *secretmanager.Client) *secretStore {
	return &secretStore{client: client}
}

func versionName(name string) string {
	if strings.Contains(name, "/versions/") {
		return name
	}
	return name + "/versions/latest"
}

func (s *secretStore) Access(ctx context.Context, name string) (string, error) {
	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: versionName(name),
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", errs.NewNotFoundError("secret not found")
		}
		return "", errs.NewExternalServiceError("secretmanager", "failed to access secret", false, err)
	}
	return strings.TrimSpace(string(res.Payload.Data)), nil
}
