package kube

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	_ "k8s.io/client-go/plugin/pkg/client/auth" // Important for various auth providers
	"k8s.io/client-go/tools/clientcmd"

	"smokectl/pkg/logging"
)

const subsystem = "Kube"

const queryTimeout = 15 * time.Second

// GetClientsetForContext builds a Kubernetes clientset for the named
// kubeconfig context. An empty context name uses the current context.
// Declared as a variable so tests can substitute a fake clientset.
var GetClientsetForContext = func(kubeContext string) (kubernetes.Interface, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	configOverrides := &clientcmd.ConfigOverrides{}
	if kubeContext != "" {
		configOverrides.CurrentContext = kubeContext
	}
	kubeConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, configOverrides)

	restConfig, err := kubeConfig.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get REST config for context %q: %w", kubeContext, err)
	}
	restConfig.Timeout = 30 * time.Second

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes clientset: %w", err)
	}
	return clientset, nil
}

// Client answers the read-only cluster queries the reachability checks need.
// Absence of a resource is a normal outcome, reported as false; only API
// failures surface as errors.
type Client struct {
	clientset kubernetes.Interface
}

// NewClient returns a Client for the named kubeconfig context.
func NewClient(kubeContext string) (*Client, error) {
	clientset, err := GetClientsetForContext(kubeContext)
	if err != nil {
		return nil, err
	}
	return &Client{clientset: clientset}, nil
}

// NewClientWithClientset wraps an existing clientset. Used by tests with the
// fake clientset.
func NewClientWithClientset(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}

// NamespaceExists reports whether the named namespace exists.
func (c *Client) NamespaceExists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := c.clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		logging.Debug(subsystem, "Namespace %q not found", name)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query namespace %q: %w", name, err)
	}
	return true, nil
}

// ServiceExists reports whether the named service exists in namespace.
func (c *Client) ServiceExists(ctx context.Context, name, namespace string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := c.clientset.CoreV1().Services(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		logging.Debug(subsystem, "Service %s/%s not found", namespace, name)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query service %s/%s: %w", namespace, name, err)
	}
	return true, nil
}

// ListApplications returns a one-line-per-deployment summary of the workloads
// in namespace, with ready/desired replica counts. It is used for failure
// diagnosis drill-down only, so API errors are folded into the text rather
// than returned.
func (c *Client) ListApplications(ctx context.Context, namespace string) string {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	deployments, err := c.clientset.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Sprintf("could not list deployments in %q: %v", namespace, err)
	}
	if len(deployments.Items) == 0 {
		return fmt.Sprintf("no deployments found in namespace %q", namespace)
	}

	lines := make([]string, 0, len(deployments.Items))
	for _, d := range deployments.Items {
		var desired int32 = 1
		if d.Spec.Replicas != nil {
			desired = *d.Spec.Replicas
		}
		lines = append(lines, fmt.Sprintf("%s: %d/%d ready", d.Name, d.Status.ReadyReplicas, desired))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}
