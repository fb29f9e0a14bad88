package golang

// ShmInclude is the C declaration block the shared-memory transport needs in
// the cgo preamble.
const ShmInclude = `
typedef struct QueueMeta {
  uintptr_t buffer_ptr;
  uintptr_t buffer_len;
  uintptr_t head_ptr;
  uintptr_t tail_ptr;
  uintptr_t working_ptr;
  uintptr_t stuck_ptr;
  int32_t working_fd;
  int32_t unstuck_fd;
} QueueMeta;
`

// ShmRingInit is the Go block that attaches to the two rings set up by the
// Rust side and dispatches requests to the per-function handlers. It uses the
// unsafe, mem_ring and ants imports only.
const ShmRingInit = `
type ringHandler func(ptr unsafe.Pointer, pool *ants.MultiPool, post func(any, []byte, unsafe.Pointer))

// ringPayload is one ring slot. Requests carry the argument array in Ptr;
// responses carry the result in Ptr and a storage key in NextUserData that
// the peer hands back with ringDrop once it is done with the result.
type ringPayload struct {
	Ptr          uintptr
	UserData     uintptr
	NextUserData uintptr
	CallID       uint32
	Flag         uint32
}

type ringStorage struct {
	resp   any
	buffer []byte
	ref    unsafe.Pointer
}

const (
	ringCall uint32 = 0
	ringDrop uint32 = 1

	ringPools       = 8
	ringPoolWorkers = -1
)

func newQueueMeta(m C.QueueMeta) mem_ring.QueueMeta {
	return mem_ring.QueueMeta{
		BufferPtr:  uintptr(m.buffer_ptr),
		BufferLen:  uintptr(m.buffer_len),
		HeadPtr:    uintptr(m.head_ptr),
		TailPtr:    uintptr(m.tail_ptr),
		WorkingPtr: uintptr(m.working_ptr),
		StuckPtr:   uintptr(m.stuck_ptr),
		WorkingFd:  int32(m.working_fd),
		UnstuckFd:  int32(m.unstuck_fd),
	}
}

func ringsInit(crr C.QueueMeta, crw C.QueueMeta, handlers []ringHandler) {
	pool, err := ants.NewMultiPool(ringPools, ringPoolWorkers, ants.RoundRobin)
	if err != nil {
		panic(err)
	}
	rq := mem_ring.NewQueue[ringPayload](newQueueMeta(crr))
	wq := mem_ring.NewQueue[ringPayload](newQueueMeta(crw))
	slab := mem_ring.NewMultiSlab[ringStorage]()

	rq.RunHandler(func(p ringPayload) {
		if p.Flag == ringDrop {
			slab.Pop(uint(p.UserData))
			return
		}
		post := func(resp any, buffer []byte, ref unsafe.Pointer) {
			key := slab.Push(ringStorage{resp: resp, buffer: buffer, ref: ref})
			wq.Push(ringPayload{
				Ptr:          uintptr(ref),
				UserData:     p.UserData,
				NextUserData: uintptr(key),
				CallID:       p.CallID,
				Flag:         ringCall,
			})
		}
		handlers[p.CallID](unsafe.Pointer(p.Ptr), pool, post)
	})
}
`
