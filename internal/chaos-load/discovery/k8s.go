// Package discovery resolves a --k8s-service "namespace/name[:port]"
// reference to a target URL, as an alternate source for LoadTestConfig.URL.
// It is pure target resolution: the engine itself never imports
// k8s.io/client-go.
package discovery

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/neogan/sre-toolkit/pkg/k8s"
)

// ResolveServiceURL parses ref ("namespace/name" or "namespace/name:port")
// and resolves it, via the same in-cluster-then-kubeconfig resolution as
// pkg/k8s.NewClient, to an http:// URL: the Service's ClusterIP and either
// the requested port or, absent one, the first port the Service exposes.
func ResolveServiceURL(ctx context.Context, ref string) (string, error) {
	namespace, name, port, err := parseRef(ref)
	if err != nil {
		return "", err
	}

	client, err := k8s.NewClient(&k8s.Config{})
	if err != nil {
		return "", fmt.Errorf("building kubernetes client: %w", err)
	}

	svc, err := client.Clientset().CoreV1().Services(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("resolving service %s/%s: %w", namespace, name, err)
	}

	if svc.Spec.ClusterIP == "" || svc.Spec.ClusterIP == corev1.ClusterIPNone {
		return "", fmt.Errorf("service %s/%s has no cluster IP", namespace, name)
	}

	resolvedPort, err := resolvePort(svc, port)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("http://%s:%d", svc.Spec.ClusterIP, resolvedPort), nil
}

func parseRef(ref string) (namespace, name string, port int, err error) {
	nsAndName, portPart, hasPort := strings.Cut(ref, ":")

	parts := strings.SplitN(nsAndName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", 0, fmt.Errorf("k8s-service ref %q must be namespace/name[:port]", ref)
	}
	namespace, name = parts[0], parts[1]

	if hasPort {
		port, err = strconv.Atoi(portPart)
		if err != nil {
			return "", "", 0, fmt.Errorf("k8s-service ref %q has a non-numeric port: %w", ref, err)
		}
	}
	return namespace, name, port, nil
}

func resolvePort(svc *corev1.Service, requested int) (int32, error) {
	if len(svc.Spec.Ports) == 0 {
		return 0, fmt.Errorf("service %s/%s exposes no ports", svc.Namespace, svc.Name)
	}

	if requested == 0 {
		if p := svc.Spec.Ports[0].Port; p != 0 {
			return p, nil
		}
		return svc.Spec.Ports[0].NodePort, nil
	}

	for _, p := range svc.Spec.Ports {
		if int(p.Port) == requested || int(p.NodePort) == requested {
			return p.Port, nil
		}
	}
	return 0, fmt.Errorf("service %s/%s has no port %d", svc.Namespace, svc.Name, requested)
}
