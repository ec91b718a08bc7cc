package repository

import (
	"io"
	"mime/multipart"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
)

// ImageRepository stores crop photos in GridFS. Listings keep only the
// serving URL; the bytes live in Mongo.
type ImageRepository struct {
	DB *mongo.Database
}

func NewImageRepository(client *mongo.Client, dbName string) *ImageRepository {
	return &ImageRepository{DB: client.Database(dbName)}
}

func (r *ImageRepository) UploadImage(file multipart.File, filename string) (string, error) {
	bucket, err := gridfs.NewBucket(r.DB)
	if err != nil {
		return "", err
	}

	stream, err := bucket.OpenUploadStream(filename)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	if _, err := io.Copy(stream, file); err != nil {
		return "", err
	}

	return stream.FileID.(primitive.ObjectID).Hex(), nil
}

func (r *ImageRepository) DownloadImage(imageID string) ([]byte, error) {
	bucket, err := gridfs.NewBucket(r.DB)
	if err != nil {
		return nil, err
	}

	objID, err := primitive.ObjectIDFromHex(imageID)
	if err != nil {
		return nil, err
	}

	stream, err := bucket.OpenDownloadStream(objID)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	return io.ReadAll(stream)
}
