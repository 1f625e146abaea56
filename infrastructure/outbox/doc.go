/*
Package outbox 实现事务性发件箱 (transactional outbox)。

写入侧: Interceptor 在工作单元提交前把聚合根缓冲的领域事件编码为 Message，
与业务数据在同一个数据库事务中写入。

投递侧: Dispatcher 轮询 pending 消息，按类型标签解码后交给 HandlerRegistry
中注册的处理器，成功后标记 delivered。处理失败的消息保持 pending 等待下一轮，
因此投递语义是 at-least-once，处理器必须幂等。

事件类型到编解码器的映射由 CodecRegistry 在启动时显式构建，不做任何基于反射的类型发现。
*/
package outbox
