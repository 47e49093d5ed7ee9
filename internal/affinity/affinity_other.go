//go:build !linux

package affinity

func pinPlatform(int) error { return ErrUnsupported }

func allowedPlatform() ([]int, error) { return nil, ErrUnsupported }

func restorePlatform([]int) error { return ErrUnsupported }
