// Package kube wraps the Kubernetes API access smokectl needs: building a
// clientset for a kubeconfig context and answering the read-only existence
// queries that gate a reachability check. Resource absence is reported as a
// boolean, never as an error, because a missing namespace or service is an
// expected smoke-test outcome rather than a fault.
package kube
