package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	coreservices "github.com/iota-uz/staff-console/modules/core/services"
	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/notification"
	"github.com/iota-uz/staff-console/pkg/types"
)

const progressInterval = 200 * time.Millisecond

func (rt *runtime) uploadService() *coreservices.UploadService {
	return rt.app.Service(coreservices.UploadService{}).(*coreservices.UploadService)
}

// uploadFile streams path to the attachments endpoint, printing progress to
// w. An interrupt cancels the transfer.
func uploadFile(ctx context.Context, rt *runtime, path string, w io.Writer) (types.Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Attachment{}, withCode(exitUsage, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return types.Attachment{}, withCode(exitUsage, err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	up := rt.uploadService().Start(ctx, info.Name(), f, info.Size(), nil)
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	interrupted := ctx.Done()
loop:
	for {
		select {
		case <-up.Done():
			break loop
		case <-interrupted:
			up.Cancel()
			interrupted = nil
		case <-ticker.C:
			sent, total := up.Progress()
			if total > 0 {
				_, _ = fmt.Fprintf(w, "\ruploading %s: %3d%%", info.Name(), sent*100/total)
			}
		}
	}
	if info.Size() > 0 {
		_, _ = fmt.Fprintln(w)
	}
	att, status, err := up.Wait()
	if err != nil {
		rt.notifier.OpenNotification(apiclient.UserMessage(err), notification.Error)
		return types.Attachment{}, reported(err)
	}
	rt.notifier.OpenNotification(statusText(status), notification.Success)
	return att, nil
}

func printAttachment(rt *runtime, att types.Attachment) error {
	if rt.json() {
		return writeJSONLine(rt.out, att)
	}
	_, _ = fmt.Fprintf(rt.out, "#%d %s %s %s\n", att.ID, att.FileName, att.FileMime, att.HumanSize())
	return nil
}

func newUploadCmd(root *rootOptions) *cobra.Command {
	var inline bool
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload an attachment and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, root, true, func(rt *runtime) error {
				if !inline {
					att, err := uploadFile(cmd.Context(), rt, args[0], cmd.ErrOrStderr())
					if err != nil {
						return err
					}
					return printAttachment(rt, att)
				}
				f, err := os.Open(args[0])
				if err != nil {
					return withCode(exitUsage, err)
				}
				defer f.Close()
				att, status, err := rt.uploadService().UploadInline(cmd.Context(), args[0], f)
				if err != nil {
					return err
				}
				rt.notifier.OpenNotification(statusText(status), notification.Success)
				return printAttachment(rt, att)
			})
		},
	}
	cmd.Flags().BoolVar(&inline, "inline", false, "Send the file base64-encoded inside a JSON body")
	return cmd
}
