package dbmongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskchat/internal/common"
)

// GridFSStorage keeps message attachments in a GridFS bucket, keyed by the
// stored file name.
type GridFSStorage struct {
	gridFS *gridfs.Bucket
}

func NewGridFSStorage(mongoClient *MongoClient) *GridFSStorage {
	return &GridFSStorage{
		gridFS: mongoClient.GridFS,
	}
}

func uploadMetadata(name string, at time.Time) bson.M {
	return bson.M{
		"stored_name": name,
		"uploaded_at": at,
	}
}

func (s *GridFSStorage) Save(ctx context.Context, name string, content io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	opts := options.GridFSUpload().SetMetadata(uploadMetadata(name, time.Now()))
	stream, err := s.gridFS.OpenUploadStream(name, opts)
	if err != nil {
		return 0, fmt.Errorf("upload failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}

	size, err := io.Copy(stream, content)
	if err != nil {
		_ = stream.Abort()
		return 0, fmt.Errorf("file copy failed: %w", err)
	}
	if err := stream.Close(); err != nil {
		return 0, fmt.Errorf("upload finalize failed: %w", err)
	}

	return size, nil
}

func (s *GridFSStorage) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	stream, err := s.gridFS.OpenDownloadStreamByName(name)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, 0, common.ErrFileNotFound
		}
		return nil, 0, fmt.Errorf("download failed: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}

	return stream, stream.GetFile().Length, nil
}

func (s *GridFSStorage) Remove(ctx context.Context, name string) error {
	cursor, err := s.gridFS.FindContext(ctx, bson.M{"filename": name})
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}
	defer cursor.Close(ctx)

	var files []gridfs.File
	if err := cursor.All(ctx, &files); err != nil {
		return fmt.Errorf("lookup decode failed: %w", err)
	}
	if len(files) == 0 {
		return common.ErrFileNotFound
	}

	for _, f := range files {
		if err := s.gridFS.DeleteContext(ctx, f.ID); err != nil {
			return fmt.Errorf("delete failed: %w", err)
		}
	}
	return nil
}
