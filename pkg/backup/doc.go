// Package backup dumps the PostgreSQL database, compresses the dump and
// hands it to a transport: an S3 bucket, the mail queue as an attachment, or
// a local directory. The temporary dump file is always cleaned up.
//
// A Service is usually registered as a cron task:
//
//	svc, _ := backup.NewService(cfg, backup.NewFileTransport("/var/backups"))
//	runner.AddTasks(ctx, svc.CronTask(24*time.Hour))
package backup
