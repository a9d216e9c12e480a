package surgeping

import (
	"context"
	"net"
	"reflect"

	"github.com/pcekm/surgeping/internal/pingsock"
	"go.uber.org/mock/gomock"
)

// MockSocketConn is a hand-written stand-in for what mockgen would produce
// for socketConn, following the same call/expectation shape as gomock's
// generated mocks.
type MockSocketConn struct {
	ctrl     *gomock.Controller
	recorder *MockSocketConnMockRecorder
}

type MockSocketConnMockRecorder struct {
	mock *MockSocketConn
}

func NewMockSocketConn(ctrl *gomock.Controller) *MockSocketConn {
	m := &MockSocketConn{ctrl: ctrl}
	m.recorder = &MockSocketConnMockRecorder{m}
	return m
}

func (m *MockSocketConn) EXPECT() *MockSocketConnMockRecorder {
	return m.recorder
}

func (m *MockSocketConn) SendTo(ctx context.Context, buf []byte, dest net.Addr) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SendTo", ctx, buf, dest)
	err, _ := ret[0].(error)
	return err
}

func (mr *MockSocketConnMockRecorder) SendTo(ctx, buf, dest any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SendTo", reflect.TypeOf((*MockSocketConn)(nil).SendTo), ctx, buf, dest)
}

func (m *MockSocketConn) RecvFrom(ctx context.Context, buf []byte) (int, net.Addr, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "RecvFrom", ctx, buf)
	n, _ := ret[0].(int)
	addr, _ := ret[1].(net.Addr)
	err, _ := ret[2].(error)
	return n, addr, err
}

func (mr *MockSocketConnMockRecorder) RecvFrom(ctx, buf any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RecvFrom", reflect.TypeOf((*MockSocketConn)(nil).RecvFrom), ctx, buf)
}

func (m *MockSocketConn) LocalAddr() net.Addr {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LocalAddr")
	addr, _ := ret[0].(net.Addr)
	return addr
}

func (mr *MockSocketConnMockRecorder) LocalAddr() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LocalAddr", reflect.TypeOf((*MockSocketConn)(nil).LocalAddr))
}

func (m *MockSocketConn) Type() pingsock.Type {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Type")
	t, _ := ret[0].(pingsock.Type)
	return t
}

func (mr *MockSocketConnMockRecorder) Type() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Type", reflect.TypeOf((*MockSocketConn)(nil).Type))
}

func (m *MockSocketConn) IdentifierRewritten() bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "IdentifierRewritten")
	b, _ := ret[0].(bool)
	return b
}

func (mr *MockSocketConnMockRecorder) IdentifierRewritten() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "IdentifierRewritten", reflect.TypeOf((*MockSocketConn)(nil).IdentifierRewritten))
}

func (m *MockSocketConn) Close() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close")
	err, _ := ret[0].(error)
	return err
}

func (mr *MockSocketConnMockRecorder) Close() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockSocketConn)(nil).Close))
}
