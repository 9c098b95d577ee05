package model

import "testing"

func TestListenerStatus_IsActive(t *testing.T) {
	tests := []struct {
		status   ListenerStatus
		expected bool
	}{
		{StatusIdle, false},
		{StatusPolling, true},
		{StatusDispatching, true},
		{StatusBackoff, false},
		{StatusStopped, false},
	}

	for _, test := range tests {
		result := test.status.IsActive()
		if result != test.expected {
			t.Errorf("ListenerStatus(%s).IsActive() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestListenerStatus_IsWaiting(t *testing.T) {
	tests := []struct {
		status   ListenerStatus
		expected bool
	}{
		{StatusIdle, true},
		{StatusPolling, false},
		{StatusDispatching, false},
		{StatusBackoff, true},
		{StatusStopped, false},
	}

	for _, test := range tests {
		result := test.status.IsWaiting()
		if result != test.expected {
			t.Errorf("ListenerStatus(%s).IsWaiting() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestListenerStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   ListenerStatus
		expected bool
	}{
		{StatusIdle, false},
		{StatusPolling, false},
		{StatusDispatching, false},
		{StatusBackoff, false},
		{StatusStopped, true},
	}

	for _, test := range tests {
		result := test.status.IsTerminal()
		if result != test.expected {
			t.Errorf("ListenerStatus(%s).IsTerminal() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestListenerStatus_String(t *testing.T) {
	status := StatusDispatching
	expected := "Dispatching"
	result := status.String()

	if result != expected {
		t.Errorf("ListenerStatus.String() = %s, expected %s", result, expected)
	}
}
