// Package storage archives rendered email bodies in S3-compatible object storage.
//
// S3 talks to AWS S3, MinIO, R2 or any service with the S3 API. Memory keeps
// objects in process for development and tests. Both implement Storage.
//
// # Usage
//
//	store, err := storage.New(storage.Config{
//		Bucket:    "sunday4k-archive",
//		AccessKey: os.Getenv("S3_ACCESS_KEY"),
//		SecretKey: os.Getenv("S3_SECRET_KEY"),
//	})
//	if err != nil {
//		return err
//	}
//
//	key := storage.ArchiveKey(time.Now(), logID)
//	if _, err := store.Put(ctx, key, []byte(html)); err != nil {
//		return err
//	}
//	url, err := store.URL(ctx, key)
//
// Private objects get presigned URLs valid for Config.URLExpiry (seven days at most).
// Public objects are served from Config.PublicURL when set.
//
// # Errors
//
// AWS errors are mapped to ErrNotFound, ErrAccessDenied or the operation's own
// sentinel (ErrUploadFailed, ErrDeleteFailed, ErrPresignFailed).
package storage
