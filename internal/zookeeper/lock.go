// internal/zookeeper/lock.go
package zookeeper

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

const (
	// 钱包互斥锁的根节点。每个 owner 对应一个子路径。
	lockRoot = "/corre/wallet_locks"

	// 等待前序节点释放的上限，防止死等
	lockWaitTimeout = 30 * time.Second
)

// DistributedLock 是基于临时顺序节点实现的分布式互斥锁。
// 同一 resourceID（钱包 owner）上的所有持锁者按节点序号排队。
type DistributedLock struct {
	conn     *Conn
	path     string // 锁路径，如 /corre/wallet_locks/owner-123
	lockNode string // 成功获取锁后自己创建的节点路径
}

// NewDistributedLock 创建一个新的分布式锁实例。
func NewDistributedLock(conn *Conn, resourceID string) (*DistributedLock, error) {
	if err := ensurePath(conn, lockRoot); err != nil {
		return nil, err
	}
	lockPath := lockRoot + "/" + resourceID
	if err := ensurePath(conn, lockPath); err != nil {
		return nil, err
	}
	return &DistributedLock{conn: conn, path: lockPath}, nil
}

// ensurePath 确保锁路径的各级节点存在。
func ensurePath(conn *Conn, path string) error {
	acc := ""
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		acc += "/" + part
		if exists, _, err := conn.Exists(acc); err == nil && exists {
			continue
		}
		if _, err := conn.Create(acc, []byte(""), 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
			return fmt.Errorf("failed to create lock path node %s: %w", acc, err)
		}
	}
	return nil
}

// Lock 尝试获取锁，获取不到则阻塞等待，直到成功或超时。
func (l *DistributedLock) Lock() error {
	// 1. 在锁路径下创建临时顺序节点
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("failed to create sequential node: %w", err)
	}
	l.lockNode = nodePath

	for {
		// 2. 列出同一锁路径下的所有候选者并排序
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			return fmt.Errorf("failed to get children nodes: %w", err)
		}
		// 保护节点形如 _c_<GUID>-lock-0000000042，字典序跟随 GUID 而非序号，
		// 必须按末尾序号排队。
		sortBySequence(children)

		// 3. 自己是最小节点则获得锁
		myNodeName := strings.TrimPrefix(l.lockNode, l.path+"/")
		if myNodeName == children[0] {
			return nil
		}

		// 4. 否则监听前一个节点的删除事件
		prevNodeIndex := -1
		for i, child := range children {
			if child == myNodeName {
				prevNodeIndex = i - 1
				break
			}
		}
		if prevNodeIndex < 0 {
			return errors.New("cannot find previous node, something is wrong")
		}
		prevNodePath := l.path + "/" + children[prevNodeIndex]

		_, _, eventChan, err := l.conn.ExistsW(prevNodePath)
		if err != nil {
			// 前一个节点刚好被删除，回到循环重新竞争
			if err == zk.ErrNoNode {
				continue
			}
			return fmt.Errorf("failed to watch previous node: %w", err)
		}

		select {
		case event := <-eventChan:
			if event.Type == zk.EventNodeDeleted {
				continue
			}
		case <-time.After(lockWaitTimeout):
			return errors.New("timeout waiting for lock")
		}
	}
}

// sequenceNumber 解析节点名末尾的顺序号，解析失败返回 -1。
func sequenceNumber(node string) int64 {
	i := len(node)
	for i > 0 && node[i-1] >= '0' && node[i-1] <= '9' {
		i--
	}
	n, err := strconv.ParseInt(node[i:], 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// sortBySequence 按顺序号升序排列候选节点。
func sortBySequence(children []string) {
	sort.SliceStable(children, func(i, j int) bool {
		return sequenceNumber(children[i]) < sequenceNumber(children[j])
	})
}

// Unlock 释放锁。
func (l *DistributedLock) Unlock() error {
	if l.lockNode == "" {
		return errors.New("no lock to unlock")
	}
	err := l.conn.Delete(l.lockNode, -1)
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to delete lock node: %w", err)
	}
	l.lockNode = ""
	return nil
}
