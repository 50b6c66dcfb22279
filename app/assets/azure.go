package assets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// Azure keeps images as blobs in an Azure Blob Storage container.
// Blob names equal the generated file names, so references resolve the same
// way as with the filesystem backend.
type Azure struct {
	client    blobAPI
	container string
	logger    *slog.Logger
}

// blobAPI is the part of *azblob.Client used after the container is set up.
type blobAPI interface {
	UploadStream(ctx context.Context, containerName, blobName string, body io.Reader, o *azblob.UploadStreamOptions) (azblob.UploadStreamResponse, error)
	DeleteBlob(ctx context.Context, containerName, blobName string, o *azblob.DeleteBlobOptions) (azblob.DeleteBlobResponse, error)
	DownloadStream(ctx context.Context, containerName, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
}

// NewAzure creates the client and makes sure the container exists.
func NewAzure(ctx context.Context, cfg *AzureConfig, logger *slog.Logger) (*Azure, error) {
	client, err := newAzureClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	a := newAzure(client, cfg.ContainerName, logger)

	if _, err := client.CreateContainer(ctx, a.container, nil); err != nil {
		if !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			return nil, fmt.Errorf("create container %s: %w", a.container, err)
		}
	}
	a.logger.Info("storage container ready", "container", a.container)

	return a, nil
}

func newAzure(client blobAPI, container string, logger *slog.Logger) *Azure {
	return &Azure{
		client:    client,
		container: container,
		logger:    logger.With("store", "azure"),
	}
}

func newAzureClient(cfg *AzureConfig) (*azblob.Client, error) {
	if cfg.ConnectionString != "" {
		return azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	}

	cred, err := defaultCredential()
	if err != nil {
		return nil, err
	}
	return azblob.NewClient(cfg.ServiceURL, cred, nil)
}

func defaultCredential() (azcore.TokenCredential, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("default credential: %w", err)
	}
	return cred, nil
}

func (a *Azure) Store(ctx context.Context, r io.Reader, originalName, baseURL string) (string, error) {
	name := NewName(originalName)

	opts := &azblob.UploadStreamOptions{}
	if contentType := mime.TypeByExtension(filepath.Ext(name)); contentType != "" {
		opts.HTTPHeaders = &blob.HTTPHeaders{
			BlobContentType: &contentType,
		}
	}

	if _, err := a.client.UploadStream(ctx, a.container, name, r, opts); err != nil {
		return "", fmt.Errorf("%w: upload blob %s: %w", ErrStorage, name, err)
	}

	a.logger.Debug("image stored", "name", name, "original_name", originalName)
	return PublicURL(baseURL, name), nil
}

func (a *Azure) Delete(ctx context.Context, reference string) error {
	name, err := NameFromReference(reference)
	if err != nil {
		return err
	}

	if _, err := a.client.DeleteBlob(ctx, a.container, name, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil
		}
		return fmt.Errorf("delete blob %s: %w", name, err)
	}

	a.logger.Debug("image deleted", "name", name)
	return nil
}

func (a *Azure) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !ValidName(name) {
		return nil, ErrInvalidReference
	}

	resp, err := a.client.DownloadStream(ctx, a.container, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", name, err)
	}
	return resp.Body, nil
}
