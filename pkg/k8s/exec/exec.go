package exec

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/kubetunnel/kubetunnel/pkg/log"
	"github.com/kubetunnel/kubetunnel/pkg/model"
	apiv1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"
)

// CommandExecutor runs one-shot commands through the pods/exec subresource.
type CommandExecutor struct {
	Client kubernetes.Interface
	Config *rest.Config
}

// Run executes the command in the remote container and returns its standard output.
func (e *CommandExecutor) Run(ctx context.Context, remote *model.RemoteInfo, command []string) (string, error) {
	req := e.Client.CoreV1().RESTClient().Post().
		Namespace(remote.Namespace).
		Resource("pods").
		Name(remote.PodName).
		SubResource("exec").
		VersionedParams(&apiv1.PodExecOptions{
			Container: remote.ContainerName,
			Command:   command,
			Stdout:    true,
			Stderr:    true,
		}, scheme.ParameterCodec)

	executor, err := remotecommand.NewSPDYExecutor(e.Config, http.MethodPost, req.URL())
	if err != nil {
		return "", fmt.Errorf("failed to establish the remote executor: %w", err)
	}

	var stdout, stderr bytes.Buffer
	err = executor.StreamWithContext(ctx, remotecommand.StreamOptions{
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		log.Infof("remote command failed: %s: %s", err, stderr.String())
		return "", err
	}

	return stdout.String(), nil
}
